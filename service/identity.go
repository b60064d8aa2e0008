package service

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"expensetracker/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized 凭证缺失、无效或已过期
var ErrUnauthorized = errors.New("未授权")

// ProviderError 身份服务返回的业务错误（如 EMAIL_EXISTS）
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("身份服务返回错误: %s", e.Code)
}

// 身份服务把登录失败归为这几个错误码，统一映射为未授权
var unauthorizedCodes = map[string]bool{
	"EMAIL_NOT_FOUND":           true,
	"INVALID_PASSWORD":          true,
	"INVALID_LOGIN_CREDENTIALS": true,
	"USER_DISABLED":             true,
}

// AuthResult 身份服务签发的认证结果
type AuthResult struct {
	UID          string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// TokenClaims ID Token 校验通过后得到的身份信息
type TokenClaims struct {
	UID   string
	Email string
}

// IdentityClient 外部身份服务客户端
// 注册、登录委托给身份服务的 REST 接口，
// ID Token 在本地用服务公布的 x509 证书做 RS256 校验
type IdentityClient struct {
	cfg        config.IdentityConfig
	httpClient *http.Client

	// kid -> 公钥，按证书接口的 Cache-Control 缓存
	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	keysExpires time.Time
}

// NewIdentityClient 创建身份服务客户端
func NewIdentityClient(cfg config.IdentityConfig) *IdentityClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IdentityClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SignUp 在身份服务上创建账号
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.post(ctx, "/v1/accounts:signUp", email, password)
}

// SignInWithPassword 邮箱密码登录，换取 ID Token
// 密码错误、账号不存在等情况统一返回 ErrUnauthorized
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	result, err := c.post(ctx, "/v1/accounts:signInWithPassword", email, password)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && unauthorizedCodes[pe.Code] {
			return nil, fmt.Errorf("%w: 邮箱或密码错误", ErrUnauthorized)
		}
		return nil, err
	}
	return result, nil
}

func (c *IdentityClient) post(ctx context.Context, path, email, password string) (*AuthResult, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求身份服务失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &errResp)
		code := errResp.Error.Message
		if code == "" {
			code = resp.Status
		}
		return nil, &ProviderError{Code: code}
	}

	var result AuthResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if result.UID == "" {
		return nil, fmt.Errorf("身份服务响应缺少 localId")
	}
	return &result, nil
}

// VerifyIDToken 校验身份服务签发的 ID Token
// 签名、过期时间、签发方、受众（project_id）任一不符都视为未授权
func (c *IdentityClient) VerifyIDToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token 为空", ErrUnauthorized)
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token 缺少 kid")
		}
		return c.publicKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(c.cfg.TokenIssuer),
		jwt.WithAudience(c.cfg.ProjectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: token 无效或已过期", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token 缺少用户标识", ErrUnauthorized)
	}

	return &TokenClaims{UID: claims.Subject, Email: claims.Email}, nil
}

type idTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// publicKey 按 kid 获取校验公钥，必要时刷新证书缓存
func (c *IdentityClient) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if time.Now().Before(c.keysExpires) {
		if key, ok := c.keys[kid]; ok {
			c.mu.RUnlock()
			return key, nil
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// 可能已被并发请求刷新过
	if time.Now().Before(c.keysExpires) {
		if key, ok := c.keys[kid]; ok {
			return key, nil
		}
	}

	if err := c.refreshKeys(ctx); err != nil {
		return nil, err
	}
	key, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("未知的签名密钥: %s", kid)
	}
	return key, nil
}

// refreshKeys 拉取身份服务的 x509 证书并解析出公钥，调用方需持有写锁
func (c *IdentityClient) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.CertsURL, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("获取签名证书失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("获取签名证书失败: %s", resp.Status)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("解析证书响应失败: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertPublicKey(certPEM)
		if err != nil {
			return fmt.Errorf("解析证书 %s 失败: %w", kid, err)
		}
		keys[kid] = key
	}

	c.keys = keys
	c.keysExpires = time.Now().Add(cacheMaxAge(resp.Header.Get("Cache-Control")))
	return nil
}

// parseCertPublicKey 从 PEM 格式的 x509 证书中取出 RSA 公钥
func parseCertPublicKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("无效的 PEM 数据")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("证书公钥不是 RSA 类型")
	}
	return key, nil
}

// cacheMaxAge 解析 Cache-Control 的 max-age，缺失时默认缓存一小时
func cacheMaxAge(header string) time.Duration {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return time.Hour
}
