package api

import (
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	reports *service.ReportService
	email   *service.EmailService
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *service.ReportService, email *service.EmailService) *ReportHandler {
	return &ReportHandler{reports: reports, email: email}
}

// MonthlyReportRequest 月度报表请求
type MonthlyReportRequest struct {
	Month int `form:"month" binding:"required,min=1,max=12" example:"1"`
	Year  int `form:"year" binding:"required,min=2000,max=2100" example:"2024"`
}

// CategoryReportRequest 类别报表请求
type CategoryReportRequest struct {
	Category string `form:"category" binding:"required" example:"Food"`
}

// Monthly 月度报表
// @Summary 获取月度报表
// @Description 统计指定自然月的总支出和按类别的金额分布，金额降序
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param month query int true "月份 (1-12)"
// @Param year query int true "年份 (2000-2100)"
// @Success 200 {object} Response{data=service.MonthlyReport} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	var req MonthlyReportRequest
	if !bindQuery(c, &req) {
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), uid, req.Year, req.Month)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成报表失败"))
		return
	}

	Success(c, report)
}

// Category 类别报表
// @Summary 获取类别报表
// @Description 返回指定类别下的全部消费记录，按日期倒序
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param category query string true "消费类别"
// @Success 200 {object} Response{data=[]service.CategoryExpense} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/category [get]
func (h *ReportHandler) Category(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	var req CategoryReportRequest
	if !bindQuery(c, &req) {
		return
	}
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	items, err := h.reports.CategoryReport(c.Request.Context(), uid, req.Category)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	SuccessWithCount(c, len(items), items)
}

// EmailMonthly 发送月度报表邮件
// @Summary 发送月度报表邮件
// @Description 生成指定月份的报表并发送到当前用户的邮箱
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param month query int true "月份 (1-12)"
// @Param year query int true "年份 (2000-2100)"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "请求参数错误或邮箱缺失"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/monthly/email [post]
func (h *ReportHandler) EmailMonthly(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	var req MonthlyReportRequest
	if !bindQuery(c, &req) {
		return
	}

	email := middleware.GetCurrentEmail(c)
	if email == "" {
		BadRequest(c, "当前账号没有邮箱")
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), uid, req.Year, req.Month)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成报表失败"))
		return
	}

	if err := h.email.SendMonthlyReport(email, req.Year, req.Month, report); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送报表邮件失败"))
		return
	}

	SuccessWithMessage(c, "报表邮件已发送", nil)
}
