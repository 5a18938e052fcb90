package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lito08/FYPAS/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

// ── RequestID ──

func TestRequestID_CustomHeader(t *testing.T) {
	r := newEngine(RequestID("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("期望回写 abc-123，实际 %q", got)
	}
	if w.Body.String() != "abc-123" {
		t.Errorf("context 中的追踪 ID 不一致: %q", w.Body.String())
	}
}

func TestRequestID_RejectsUnsafeValue(t *testing.T) {
	r := newEngine(RequestID(""))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(DefaultRequestIDHeader, "bad id\twith spaces")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	got := w.Header().Get(DefaultRequestIDHeader)
	if got == "" || strings.ContainsAny(got, " \t") {
		t.Errorf("期望生成新的追踪 ID，实际 %q", got)
	}
}

// ── CORS ──

func TestCORS_ExposesDownloadHeaders(t *testing.T) {
	cfg := config.CORSConfig{AllowOrigins: []string{"http://localhost:5173/"}, MaxAge: time.Hour}
	r := newEngine(CORS(cfg, "X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("预检请求期望 204，实际 %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin 不符: %q", got)
	}
	expose := w.Header().Get("Access-Control-Expose-Headers")
	if !strings.Contains(expose, "Content-Disposition") || !strings.Contains(expose, "X-Correlation-ID") {
		t.Errorf("Expose-Headers 应包含下载文件名与追踪头: %q", expose)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Max-Age 期望 3600，实际 %q", got)
	}
}

func TestCORS_UnknownOrigin(t *testing.T) {
	r := newEngine(CORS(config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}}, ""))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("未授权来源不应返回 Allow-Origin，实际 %q", got)
	}
}

// ── SecurityHeaders ──

func TestSecurityHeaders(t *testing.T) {
	cases := []struct {
		name string
		hsts bool
	}{
		{"http", false},
		{"https", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(SecurityHeaders(tc.hsts))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			if got := w.Header().Get("Cache-Control"); got != "no-store" {
				t.Errorf("Cache-Control 期望 no-store，实际 %q", got)
			}
			if got := w.Header().Get("Content-Security-Policy"); !strings.HasPrefix(got, "default-src 'none'") {
				t.Errorf("CSP 不符: %q", got)
			}
			if has := w.Header().Get("Strict-Transport-Security") != ""; has != tc.hsts {
				t.Errorf("HSTS 期望 %v，实际 %v", tc.hsts, has)
			}
		})
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := newEngine(BodyLimit(8))

	cases := []struct {
		name          string
		body          string
		unknownLength bool
		want          int
	}{
		{"within limit", "small", false, http.StatusNoContent},
		{"declared too large", strings.Repeat("x", 32), false, http.StatusRequestEntityTooLarge},
		{"streamed too large", strings.Repeat("x", 32), true, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tc.body))
			if tc.unknownLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("期望 %d，实际 %d", tc.want, w.Code)
			}
		})
	}
}

func TestBodyLimit_Disabled(t *testing.T) {
	r := newEngine(BodyLimit(0))
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1024)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("未配置上限时应放行，实际 %d", w.Code)
	}
}
