package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if strings.TrimSpace(generated) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func decodeStatusCode(t *testing.T, body []byte) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", constants.ScopePromo))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if got := decodeStatusCode(t, w.Body.Bytes()); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}
}

func TestJWTAuthMiddlewareScopes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "router-test-secret-key-0123456789abcdef"

	r := gin.New()
	r.Use(JWTAuthMiddleware(secret, constants.ScopePromoAdmin))
	r.GET("/ping", func(c *gin.Context) {
		gamespaceID, _ := c.Get(constants.ContextKeyGamespaceID)
		accountID, _ := c.Get(constants.ContextKeyAccountID)
		c.JSON(http.StatusOK, gin.H{
			"gamespace_id": gamespaceID,
			"account_id":   accountID,
		})
	})

	adminToken, _, err := service.SignAccessToken(secret, service.AccessClaims{
		GamespaceID: 7,
		AccountID:   "ops-1",
		Scopes:      []string{constants.ScopePromo, constants.ScopePromoAdmin},
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign admin token failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)

	var resp struct {
		GamespaceID uint   `json:"gamespace_id"`
		AccountID   string `json:"account_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.GamespaceID != 7 || resp.AccountID != "ops-1" {
		t.Fatalf("claims not injected, got %+v", resp)
	}

	playerToken, _, err := service.SignAccessToken(secret, service.AccessClaims{
		GamespaceID: 7,
		AccountID:   "player-1",
		Scopes:      []string{constants.ScopePromo},
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign player token failed: %v", err)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set("Authorization", "Bearer "+playerToken)
	r.ServeHTTP(w2, req2)

	if got := decodeStatusCode(t, w2.Body.Bytes()); got != 403 {
		t.Fatalf("status_code want 403 got %d", got)
	}

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req3.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w3, req3)

	if got := decodeStatusCode(t, w3.Body.Bytes()); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}
}

func TestInternalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(InternalAuthMiddleware("internal-secret"))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderInternalToken, "internal-secret")
	r.ServeHTTP(w, req)

	if got := decodeStatusCode(t, w.Body.Bytes()); got != 0 {
		t.Fatalf("status_code want 0 got %d", got)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set(constants.HeaderInternalToken, "wrong")
	r.ServeHTTP(w2, req2)

	if got := decodeStatusCode(t, w2.Body.Bytes()); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}

	// 未配置令牌时所有内部请求都应被拒绝
	r3 := gin.New()
	r3.Use(InternalAuthMiddleware(""))
	r3.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r3.ServeHTTP(w3, req3)

	if got := decodeStatusCode(t, w3.Body.Bytes()); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}
}
