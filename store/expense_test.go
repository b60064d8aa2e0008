package store

import (
	"context"
	"testing"
	"time"

	"expensetracker/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func expenseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_uid", "title", "amount", "category", "date", "created_at", "updated_at"})
}

func TestExpenseStore_Create(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := NewExpenseStore(db)
	expense := &models.Expense{
		UserUID:  "u1",
		Title:    "午餐",
		Amount:   decimal.NewFromFloat(99.99),
		Category: models.CategoryFood,
		Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local),
	}
	require.NoError(t, s.Create(context.Background(), expense))
	assert.Equal(t, uint(1), expense.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_GetByID(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, "u1").
		WillReturnRows(expenseRows().
			AddRow(1, "u1", "午餐", "99.99", "Food", now, now, now))

	s := NewExpenseStore(db)
	expense, err := s.GetByID(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, "午餐", expense.Title)
	assert.True(t, expense.Amount.Equal(decimal.NewFromFloat(99.99)))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 记录属于其他用户时与不存在不可区分，都返回 ErrNotFound
func TestExpenseStore_GetByID_OtherOwner(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, "u2").
		WillReturnRows(expenseRows())

	s := NewExpenseStore(db)
	_, err := s.GetByID(context.Background(), "u2", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 所有列表查询都带上用户限定，租户隔离不可绕过
func TestExpenseStore_List_TenantScope(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_uid = .* ORDER BY date DESC, id DESC").
		WithArgs("u1").
		WillReturnRows(expenseRows().
			AddRow(2, "u1", "晚餐", "30.00", "Food", now, now, now).
			AddRow(1, "u1", "午餐", "20.00", "Food", now.Add(-time.Hour), now, now))

	s := NewExpenseStore(db)
	q, err := NewListQuery("", "", "", "", "")
	require.NoError(t, err)

	expenses, err := s.List(context.Background(), "u1", q)
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_List_SortByAmountAsc(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_uid = .* ORDER BY amount ASC").
		WithArgs("u1").
		WillReturnRows(expenseRows().
			AddRow(2, "u1", "地铁", "5.00", "Travel", now, now, now).
			AddRow(1, "u1", "午餐", "20.00", "Food", now, now, now))

	s := NewExpenseStore(db)
	q, err := NewListQuery("", "", "", "amount", "asc")
	require.NoError(t, err)

	expenses, err := s.List(context.Background(), "u1", q)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.True(t, expenses[0].Amount.LessThan(expenses[1].Amount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_List_CategoryAndRange(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_uid = .* AND category = .* AND date >= .* AND date <= .*").
		WithArgs("u1", "Food", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(expenseRows())

	s := NewExpenseStore(db)
	q, err := NewListQuery("Food", "2024-01-01", "2024-01-31", "", "")
	require.NoError(t, err)

	expenses, err := s.List(context.Background(), "u1", q)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 部分更新只改提交的字段
func TestExpenseStore_Update_Partial(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1, "u1").
		WillReturnRows(expenseRows().
			AddRow(1, "u1", "午餐", "20.00", "Food", now, now, now))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 更新后重新加载
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1).
		WillReturnRows(expenseRows().
			AddRow(1, "u1", "午餐", "25.00", "Food", now, now, now))

	s := NewExpenseStore(db)
	updated, err := s.Update(context.Background(), "u1", 1, map[string]interface{}{
		"amount": decimal.NewFromFloat(25.00),
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromFloat(25.00)))
	assert.Equal(t, "午餐", updated.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_Update_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(99, "u1").
		WillReturnRows(expenseRows())

	s := NewExpenseStore(db)
	_, err := s.Update(context.Background(), "u1", 99, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_Delete(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WithArgs(1, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewExpenseStore(db)
	require.NoError(t, s.Delete(context.Background(), "u1", 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 重复删除第二次返回 ErrNotFound
func TestExpenseStore_Delete_Twice(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WithArgs(1, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WithArgs(1, "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := NewExpenseStore(db)
	require.NoError(t, s.Delete(context.Background(), "u1", 1))
	assert.ErrorIs(t, s.Delete(context.Background(), "u1", 1), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseStore_AggregateByCategory(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT category, SUM\\(amount\\) AS total FROM `expenses`").
		WithArgs("u1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("Travel", "100.00").
			AddRow("Food", "15.00"))

	s := NewExpenseStore(db)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.Local)
	rows, err := s.AggregateByCategory(context.Background(), "u1", start, end)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Travel", rows[0].Category)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Food", rows[1].Category)
	assert.True(t, rows[1].Total.Equal(decimal.NewFromInt(15)))
	require.NoError(t, mock.ExpectationsWereMet())
}
