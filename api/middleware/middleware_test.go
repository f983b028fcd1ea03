package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/customeros/mailtriage/internal/utils"
)

func newRouter(validKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyMiddleware(APIKeyConfig{ValidAPIKey: validKey}))
	r.Use(CustomContextMiddleware("mailtriage-test"))
	r.Use(TracingMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetAppSourceFromContext(c.Request.Context()))
	})
	return r
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		validKey string
		header   string
		code     int
		body     string
	}{
		{name: "missing", validKey: "secret", code: http.StatusUnauthorized, body: "Missing API key"},
		{name: "invalid", validKey: "secret", header: "nope", code: http.StatusUnauthorized, body: "Invalid API key"},
		{name: "not configured", header: "secret", code: http.StatusUnauthorized, body: "Invalid API key"},
		{name: "valid", validKey: "secret", header: "secret", code: http.StatusOK, body: "mailtriage-test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(tt.validKey).ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}
