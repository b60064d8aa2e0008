package store

import (
	"context"
	"errors"
	"time"

	"expensetracker/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseStore 消费记录存储
// 所有方法都以 uid 作为租户边界，查询不可能跨用户
type ExpenseStore struct {
	db *gorm.DB
}

// NewExpenseStore 创建消费记录存储
func NewExpenseStore(db *gorm.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// CategoryTotal 单个类别的金额合计
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Create 创建消费记录，ID 由存储层生成
func (s *ExpenseStore) Create(ctx context.Context, expense *models.Expense) error {
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return &PersistenceError{Op: "create", Err: err}
	}
	return nil
}

// GetByID 按 ID 获取当前用户的消费记录
// 记录不存在和属于其他用户统一返回 ErrNotFound
func (s *ExpenseStore) GetByID(ctx context.Context, uid string, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.WithContext(ctx).Where("id = ? AND user_uid = ?", id, uid).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return &expense, nil
}

// List 按查询描述获取当前用户的消费记录，完整结果集，按描述中的排序返回
func (s *ExpenseStore) List(ctx context.Context, uid string, q *ListQuery) ([]models.Expense, error) {
	tx := s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_uid = ?", uid)
	tx = q.apply(tx)

	var expenses []models.Expense
	if err := tx.Find(&expenses).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return expenses, nil
}

// Update 部分更新，updates 中没有的字段保持原值
// 返回更新后的完整记录
func (s *ExpenseStore) Update(ctx context.Context, uid string, id uint, updates map[string]interface{}) (*models.Expense, error) {
	expense, err := s.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
			return nil, &PersistenceError{Op: "update", Err: err}
		}
	}

	// 重新获取更新后的记录
	if err := s.db.WithContext(ctx).First(expense, expense.ID).Error; err != nil {
		return nil, &PersistenceError{Op: "update", Err: err}
	}
	return expense, nil
}

// Delete 删除当前用户的消费记录（物理删除）
// 未删除任何行视为记录不存在，重复删除同一 ID 第二次返回 ErrNotFound
func (s *ExpenseStore) Delete(ctx context.Context, uid string, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_uid = ?", id, uid).Delete(&models.Expense{})
	if res.Error != nil {
		return &PersistenceError{Op: "delete", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AggregateByCategory 在给定时间范围内按类别汇总金额
// 合计降序排列，金额相同按类别名升序，保证结果稳定
func (s *ExpenseStore) AggregateByCategory(ctx context.Context, uid string, start, end time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_uid = ? AND date >= ? AND date <= ?", uid, start, end).
		Group("category").
		Order("total DESC, category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate", Err: err}
	}
	return rows, nil
}
