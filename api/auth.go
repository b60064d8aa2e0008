package api

import (
	"context"
	"errors"

	"expensetracker/middleware"
	"expensetracker/service"
	"expensetracker/store"

	"github.com/gin-gonic/gin"
)

// identityProvider 注册/登录所依赖的身份服务能力
type identityProvider interface {
	SignUp(ctx context.Context, email, password string) (*service.AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// AuthHandler 认证处理器
// 凭证的签发与校验全部委托身份服务，本地只维护懒创建的用户记录
type AuthHandler struct {
	identity identityProvider
	users    *store.UserStore
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(identity identityProvider, users *store.UserStore) *AuthHandler {
	return &AuthHandler{identity: identity, users: users}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"password123"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 在外部身份服务上创建账号，并在本地懒创建用户记录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response "注册成功"
// @Failure 400 {object} Response "请求参数错误或邮箱已存在"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var pe *service.ProviderError
		if errors.As(err, &pe) && pe.Code == "EMAIL_EXISTS" {
			BadRequest(c, "该邮箱已注册")
			return
		}
		InternalError(c, SafeErrorMessage(err, "注册失败"))
		return
	}

	if _, err := h.users.EnsureUser(c.Request.Context(), result.UID, result.Email); err != nil {
		InternalError(c, SafeErrorMessage(err, "注册失败"))
		return
	}

	SuccessWithMessage(c, "注册成功", gin.H{
		"uid":   result.UID,
		"email": result.Email,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱密码登录，返回身份服务签发的 ID Token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "邮箱或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.identity.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			Unauthorized(c, "邮箱或密码错误")
			return
		}
		InternalError(c, SafeErrorMessage(err, "登录失败"))
		return
	}

	// 首次登录时懒创建本地用户记录
	if _, err := h.users.EnsureUser(c.Request.Context(), result.UID, result.Email); err != nil {
		InternalError(c, SafeErrorMessage(err, "登录失败"))
		return
	}

	SuccessWithMessage(c, "登录成功", gin.H{
		"uid":           result.UID,
		"id_token":      result.IDToken,
		"refresh_token": result.RefreshToken,
	})
}

// Logout 用户登出
// @Summary 用户登出
// @Description Token 由客户端丢弃即可，服务端不维护会话
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "登出成功"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	SuccessWithMessage(c, "登出成功", nil)
}

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	uid := middleware.GetCurrentUID(c)

	user, err := h.users.GetByUID(c.Request.Context(), uid)
	if err != nil {
		// 本地记录可能还没创建，凭证里的信息足够返回
		Success(c, gin.H{
			"uid":   uid,
			"email": middleware.GetCurrentEmail(c),
		})
		return
	}

	Success(c, gin.H{
		"uid":   user.UID,
		"email": user.Email,
	})
}
