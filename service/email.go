package service

import (
	"fmt"
	"sort"
	"strings"

	"expensetracker/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendMonthlyReport 把月度报表发送到用户邮箱
func (s *EmailService) SendMonthlyReport(toEmail string, year, month int, report *MonthlyReport) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 EXPENSE_EMAIL_ENABLED=true")
	}

	subject := fmt.Sprintf("【记账助手】%d年%d月消费报表", year, month)
	body := s.generateReportEmailBody(year, month, report)

	return s.sendEmail(toEmail, subject, body)
}

// generateReportEmailBody 生成报表邮件内容
func (s *EmailService) generateReportEmailBody(year, month int, report *MonthlyReport) string {
	// 金额降序，相同按类别名排序，与接口返回的顺序一致
	categories := make([]string, 0, len(report.Categories))
	for name := range report.Categories {
		categories = append(categories, name)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := report.Categories[categories[i]], report.Categories[categories[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return categories[i] < categories[j]
	})

	var rows strings.Builder
	for _, name := range categories {
		rows.WriteString(fmt.Sprintf(
			`<tr><td>%s</td><td class="amount">%s</td></tr>`,
			name, report.Categories[name].StringFixed(2)))
	}
	if len(categories) == 0 {
		rows.WriteString(`<tr><td colspan="2">本月暂无消费记录</td></tr>`)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .total { font-size: 28px; color: #1d4ed8; font-weight: 600; margin: 0 0 20px; }
        table { width: 100%%; border-collapse: collapse; }
        td { padding: 10px 8px; border-bottom: 1px solid #e5e7eb; color: #333; }
        .amount { text-align: right; font-variant-numeric: tabular-nums; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 %d年%d月消费报表</h1>
        </div>
        <div class="content">
            <p class="total">总支出：%s</p>
            <table>%s</table>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>`, year, month, report.Total.StringFixed(2), rows.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
