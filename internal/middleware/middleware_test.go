package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandlePanics(t *testing.T) {
	tests := []struct {
		name      string
		recovered any
		wantBody  string
	}{
		{name: "error value", recovered: errors.New("kaboom"), wantBody: "kaboom"},
		{name: "string value", recovered: "oh no", wantBody: "oh no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(gin.CustomRecovery(HandlePanics()))
			r.GET("/panic", func(c *gin.Context) {
				panic(tt.recovered)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/teapot", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot?x=1", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "short and stout")
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		hosts       []string
		method      string
		origin      string
		wantAllow   string
		wantMethods bool
		wantStatus  int
	}{
		{name: "allowed origin", hosts: []string{"https://joshlong.com"}, method: http.MethodGet, origin: "https://joshlong.com", wantAllow: "https://joshlong.com", wantStatus: http.StatusOK},
		{name: "unknown origin", hosts: []string{"https://joshlong.com"}, method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusForbidden},
		{name: "no origin", hosts: []string{"https://joshlong.com"}, method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "same origin", hosts: []string{"https://joshlong.com"}, method: http.MethodGet, origin: "http://example.com", wantStatus: http.StatusOK},
		{name: "wildcard", hosts: []string{"*"}, method: http.MethodGet, origin: "http://localhost:3000", wantAllow: "*", wantStatus: http.StatusOK},
		{name: "wildcard among hosts", hosts: []string{"https://joshlong.com", "*"}, method: http.MethodGet, origin: "http://localhost:3000", wantAllow: "*", wantStatus: http.StatusOK},
		{name: "preflight", hosts: []string{"https://joshlong.com"}, method: http.MethodOptions, origin: "https://joshlong.com", wantAllow: "https://joshlong.com", wantMethods: true, wantStatus: http.StatusNoContent},
		{name: "preflight unknown origin", hosts: []string{"https://joshlong.com"}, method: http.MethodOptions, origin: "https://evil.example", wantStatus: http.StatusForbidden},
		{name: "no hosts", method: http.MethodGet, origin: "https://joshlong.com", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.hosts))
			r.GET("/thing", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/thing", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
			methods := rec.Header().Get("Access-Control-Allow-Methods")
			if tt.wantMethods && !strings.Contains(methods, http.MethodPost) {
				t.Errorf("Access-Control-Allow-Methods = %q, want it to list POST", methods)
			}
			if tt.wantMethods && rec.Header().Get("Access-Control-Max-Age") != "3600" {
				t.Errorf("Access-Control-Max-Age = %q, want 3600", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
