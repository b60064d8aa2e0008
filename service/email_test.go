package service

import (
	"strings"
	"testing"

	"expensetracker/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEmailService_Disabled(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{Enabled: false})

	err := s.SendMonthlyReport("user@example.com", 2024, 1, &MonthlyReport{
		Total:      decimal.Zero,
		Categories: map[string]decimal.Decimal{},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "邮件服务未启用")
}

func TestGenerateReportEmailBody(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{})

	body := s.generateReportEmailBody(2024, 1, &MonthlyReport{
		Total: decimal.NewFromInt(115),
		Categories: map[string]decimal.Decimal{
			"Food":   decimal.NewFromInt(15),
			"Travel": decimal.NewFromInt(100),
		},
	})

	assert.Contains(t, body, "2024年1月消费报表")
	assert.Contains(t, body, "115.00")
	assert.Contains(t, body, "Food")
	assert.Contains(t, body, "Travel")

	// 金额降序：Travel 在 Food 前面
	assert.Less(t, strings.Index(body, "Travel"), strings.Index(body, "<td>Food</td>"))
}

func TestGenerateReportEmailBody_Empty(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{})

	body := s.generateReportEmailBody(2024, 3, &MonthlyReport{
		Total:      decimal.Zero,
		Categories: map[string]decimal.Decimal{},
	})

	assert.Contains(t, body, "0.00")
	assert.Contains(t, body, "本月暂无消费记录")
}
