package store

import (
	"time"

	"gorm.io/gorm"
)

// 可用于排序的列，白名单之外的字段一律拒绝
var sortColumns = map[string]string{
	"date":     "date",
	"amount":   "amount",
	"title":    "title",
	"category": "category",
}

// ListQuery 列表查询描述
// 由用户输入构建并校验，所有者限定不在这里，由 ExpenseStore 强制追加
type ListQuery struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	Ascending bool
}

// NewListQuery 根据用户输入构建查询描述
// 日期为 2006-01-02 格式，结束日期包含当天；sort_by 只接受白名单字段，
// order 为 asc 时升序，其余情况降序；不传 sort_by 时默认按日期倒序
func NewListQuery(category, startDate, endDate, sortBy, order string) (*ListQuery, error) {
	q := &ListQuery{Category: category}

	if startDate != "" {
		t, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
		if err != nil {
			return nil, &ValidationError{Field: "start_date", Message: "日期格式错误，应为: 2006-01-02"}
		}
		q.StartDate = &t
	}
	if endDate != "" {
		t, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
		if err != nil {
			return nil, &ValidationError{Field: "end_date", Message: "日期格式错误，应为: 2006-01-02"}
		}
		// 包含结束日期当天
		t = t.Add(24*time.Hour - time.Second)
		q.EndDate = &t
	}

	if sortBy != "" {
		if _, ok := sortColumns[sortBy]; !ok {
			return nil, &ValidationError{Field: "sort_by", Message: "不支持的排序字段"}
		}
		q.SortBy = sortBy
		q.Ascending = order == "asc"
	}

	return q, nil
}

// apply 把查询描述套用到 GORM 查询上（不含所有者限定）
func (q *ListQuery) apply(tx *gorm.DB) *gorm.DB {
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.StartDate != nil {
		tx = tx.Where("date >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		tx = tx.Where("date <= ?", *q.EndDate)
	}

	if q.SortBy == "" {
		// 默认最新在前
		return tx.Order("date DESC, id DESC")
	}
	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	return tx.Order(sortColumns[q.SortBy] + " " + dir)
}
