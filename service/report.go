package service

import (
	"context"
	"time"

	"expensetracker/models"
	"expensetracker/store"

	"github.com/shopspring/decimal"
)

// expenseReader 报表所需的存储能力
type expenseReader interface {
	List(ctx context.Context, uid string, q *store.ListQuery) ([]models.Expense, error)
	AggregateByCategory(ctx context.Context, uid string, start, end time.Time) ([]store.CategoryTotal, error)
}

// ReportService 报表服务
type ReportService struct {
	store expenseReader
}

// NewReportService 创建报表服务
func NewReportService(s expenseReader) *ReportService {
	return &ReportService{store: s}
}

// MonthlyReport 月度报表：总支出 + 按类别的金额分布
// 没有记录的类别不会出现在 Categories 中
type MonthlyReport struct {
	Total      decimal.Decimal            `json:"total"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// MonthRange 计算某个自然月的起止时间
// 起点为当月第一天 00:00:00，终点为当月最后一天 23:59:59，
// 月末由下个月第一天倒推，天数和闰年都不用单独处理
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// MonthlyReport 生成指定用户某个自然月的支出报表
// 总额用 decimal 累加各类别合计得出，与逐条相加的结果一致；
// 当月没有任何记录时返回 total=0、空的类别表
func (s *ReportService) MonthlyReport(ctx context.Context, uid string, year, month int) (*MonthlyReport, error) {
	start, end := MonthRange(year, month)

	rows, err := s.store.AggregateByCategory(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		Total:      decimal.Zero,
		Categories: make(map[string]decimal.Decimal, len(rows)),
	}
	for _, row := range rows {
		report.Categories[row.Category] = row.Total
		report.Total = report.Total.Add(row.Total)
	}
	return report, nil
}

// CategoryExpense 类别报表中的单条记录
// 类别本身是查询条件，逐条重复没有意义，这里不再输出
type CategoryExpense struct {
	ID     uint            `json:"id"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// CategoryReport 某个类别下的全部记录，按日期倒序
func (s *ReportService) CategoryReport(ctx context.Context, uid, category string) ([]CategoryExpense, error) {
	q := &store.ListQuery{Category: category}
	expenses, err := s.store.List(ctx, uid, q)
	if err != nil {
		return nil, err
	}

	items := make([]CategoryExpense, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, CategoryExpense{
			ID:     e.ID,
			Title:  e.Title,
			Amount: e.Amount,
			Date:   e.Date,
		})
	}
	return items, nil
}
