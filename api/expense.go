package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	store *store.ExpenseStore
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(s *store.ExpenseStore) *ExpenseHandler {
	return &ExpenseHandler{store: s}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Title    string           `json:"title" binding:"required,max=100" example:"午餐"`
	Amount   *decimal.Decimal `json:"amount" binding:"required" example:"99.99"`
	Category string           `json:"category" binding:"required" example:"Food"`
	Date     string           `json:"date" binding:"required" example:"2024-01-15"`
}

// UpdateExpenseRequest 更新消费记录请求
// 指针字段区分「未传」和「传了零值」，没传的字段保持原值
type UpdateExpenseRequest struct {
	Title    *string          `json:"title" example:"午餐"`
	Amount   *decimal.Decimal `json:"amount" example:"99.99"`
	Category *string          `json:"category" example:"Food"`
	Date     *string          `json:"date" example:"2024-01-15"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Category  string `form:"category" example:"Food"`
	StartDate string `form:"start_date" example:"2024-01-01"`
	EndDate   string `form:"end_date" example:"2024-12-31"`
	SortBy    string `form:"sort_by" example:"amount"`
	Order     string `form:"order" example:"asc"`
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	var req CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		BadRequest(c, "标题不能为空")
		return
	}
	if req.Amount.IsNegative() {
		BadRequest(c, "金额不能为负数")
		return
	}
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	expense := models.Expense{
		UserUID:  uid,
		Title:    req.Title,
		Amount:   *req.Amount,
		Category: req.Category,
		Date:     date,
	}

	if err := h.store.Create(c.Request.Context(), &expense); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录列表，支持类别/日期范围筛选与排序
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category query string false "类别筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param sort_by query string false "排序字段 (date/amount/title/category)"
// @Param order query string false "排序方向，asc 为升序，默认降序"
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	var req ExpenseListRequest
	if !bindQuery(c, &req) {
		return
	}

	if req.Category != "" && !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	query, err := store.NewListQuery(req.Category, req.StartDate, req.EndDate, req.SortBy, req.Order)
	if err != nil {
		if ve, ok := store.AsValidationError(err); ok {
			ValidationFailed(c, []FieldViolation{{Field: ve.Field, Message: ve.Message}})
			return
		}
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	expenses, err := h.store.List(c.Request.Context(), uid, query)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	SuccessWithCount(c, len(expenses), expenses)
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	expense, err := h.store.GetByID(c.Request.Context(), uid, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "记录不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 部分更新指定的消费记录，未提交的字段保持原值
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body UpdateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	// 只更新提交的字段
	updates := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			BadRequest(c, "标题不能为空")
			return
		}
		if len([]rune(title)) > 100 {
			BadRequest(c, "标题不能超过100个字符")
			return
		}
		updates["title"] = title
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			BadRequest(c, "金额不能为负数")
			return
		}
		updates["amount"] = *req.Amount
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			BadRequest(c, "无效的消费类别")
			return
		}
		updates["category"] = *req.Category
	}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["date"] = date
	}

	expense, err := h.store.Update(c.Request.Context(), uid, uint(id), updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "记录不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := h.store.Delete(c.Request.Context(), uid, uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "记录不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetCategories 获取消费类别列表
// @Summary 获取消费类别列表
// @Description 获取固定的消费类别枚举
// @Tags 消费记录
// @Produce json
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/categories [get]
func (h *ExpenseHandler) GetCategories(c *gin.Context) {
	Success(c, models.GetCategories())
}
