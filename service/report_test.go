package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"expensetracker/models"
	"expensetracker/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExpenseStore 内存实现，行为与真实存储一致：
// 按 uid 隔离、范围含両端、合计降序且相同金额按类别名升序
type fakeExpenseStore struct {
	records []models.Expense
}

func (f *fakeExpenseStore) List(_ context.Context, uid string, q *store.ListQuery) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.records {
		if e.UserUID != uid {
			continue
		}
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		out = append(out, e)
	}
	// 默认按日期倒序
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeExpenseStore) AggregateByCategory(_ context.Context, uid string, start, end time.Time) ([]store.CategoryTotal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, e := range f.records {
		if e.UserUID != uid || e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	rows := make([]store.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		rows = append(rows, store.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.Local)
}

func testRecords() *fakeExpenseStore {
	return &fakeExpenseStore{records: []models.Expense{
		{ID: 1, UserUID: "u1", Title: "groceries", Amount: decimal.NewFromInt(10), Category: models.CategoryFood, Date: day(2024, 1, 5)},
		{ID: 2, UserUID: "u1", Title: "snacks", Amount: decimal.NewFromInt(5), Category: models.CategoryFood, Date: day(2024, 1, 20)},
		{ID: 3, UserUID: "u1", Title: "flight", Amount: decimal.NewFromInt(100), Category: models.CategoryTravel, Date: day(2024, 2, 1)},
		{ID: 4, UserUID: "u2", Title: "someone else", Amount: decimal.NewFromInt(999), Category: models.CategoryFood, Date: day(2024, 1, 10)},
	}}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.Local), end)

	// 闰年二月
	start, end = MonthRange(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local), end)

	// 平年二月
	_, end = MonthRange(2023, 2)
	assert.Equal(t, time.Date(2023, 2, 28, 23, 59, 59, 0, time.Local), end)

	// 十二月跨年
	_, end = MonthRange(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local), end)
}

func TestReportService_MonthlyReport(t *testing.T) {
	s := NewReportService(testRecords())

	report, err := s.MonthlyReport(context.Background(), "u1", 2024, 1)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(15)))
	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[models.CategoryFood].Equal(decimal.NewFromInt(15)))

	report, err = s.MonthlyReport(context.Background(), "u1", 2024, 2)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(100)))
	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[models.CategoryTravel].Equal(decimal.NewFromInt(100)))
}

// 没有记录的月份返回 total=0 和空类别表，而不是错误
func TestReportService_MonthlyReport_EmptyMonth(t *testing.T) {
	s := NewReportService(testRecords())

	report, err := s.MonthlyReport(context.Background(), "u1", 2024, 3)
	require.NoError(t, err)
	assert.True(t, report.Total.IsZero())
	assert.NotNil(t, report.Categories)
	assert.Empty(t, report.Categories)
}

// 其他用户的记录不会进入报表
func TestReportService_MonthlyReport_TenantIsolation(t *testing.T) {
	s := NewReportService(testRecords())

	report, err := s.MonthlyReport(context.Background(), "u2", 2024, 1)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(999)))

	report, err = s.MonthlyReport(context.Background(), "u1", 2024, 1)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(15)))
}

func TestReportService_CategoryReport(t *testing.T) {
	s := NewReportService(testRecords())

	items, err := s.CategoryReport(context.Background(), "u1", models.CategoryFood)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 日期倒序
	assert.Equal(t, uint(2), items[0].ID)
	assert.Equal(t, uint(1), items[1].ID)
	assert.True(t, items[0].Date.After(items[1].Date))
}

func TestReportService_CategoryReport_Empty(t *testing.T) {
	s := NewReportService(testRecords())

	items, err := s.CategoryReport(context.Background(), "u1", models.CategoryBills)
	require.NoError(t, err)
	assert.Empty(t, items)
}
