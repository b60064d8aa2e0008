package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfigDefaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	// 内置默认配置
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, "https://identitytoolkit.googleapis.com", cfg.Identity.BaseURL)
	assert.False(t, cfg.Email.Enabled)

	// 超时默认 10 秒
	assert.Equal(t, 10, cfg.Identity.TimeoutSeconds)
	assert.Equal(t, "10s", cfg.Identity.Timeout.String())

	// 保存到全局变量
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfigIssuerDerived(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	t.Setenv("EXPENSE_IDENTITY_PROJECT_ID", "demo-project")
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "demo-project", cfg.Identity.ProjectID)
	assert.Equal(t, "https://securetoken.google.com/demo-project", cfg.Identity.TokenIssuer)
}
