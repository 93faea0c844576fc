package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func Test_maskQuery(t *testing.T) {
	q := url.Values{"page": {"2"}, "Password": {"pw"}, "access_token": {"abc"}, "clientSecret": {"s"}}
	assert.Equal(t, url.Values{
		"page":         {"2"},
		"Password":     {"****"},
		"access_token": {"****"},
		"clientSecret": {"****"},
	}, maskQuery(q))
	assert.Nil(t, maskQuery(url.Values{}))
}

func Test_AccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/books/:id", func(c *gin.Context) {
		c.Set(KeyPrincipal, ann)
		c.String(http.StatusOK, "dune")
	})
	r.POST("/books/borrow", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.Len())

	req := httptest.NewRequest(http.MethodGet, "/books/42?token=abc", nil)
	req.Header.Set("Authorization", "Bearer abc")
	serve(r, req)
	require.Equal(t, 1, logs.Len())
	e := logs.TakeAll()[0]
	assert.Equal(t, zapcore.InfoLevel, e.Level)
	f := e.ContextMap()
	assert.Equal(t, "/books/:id", f["route"])
	assert.Equal(t, int64(200), f["status"])
	assert.Equal(t, "ann", f["user"])
	assert.Equal(t, "bearer", f["auth"])
	assert.Equal(t, int64(4), f["size"])
	assert.Equal(t, url.Values{"token": {"****"}}, f["query"])
	assert.NotEmpty(t, f["rid"])

	serve(r, httptest.NewRequest(http.MethodPost, "/books/borrow", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	entries := logs.TakeAll()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "unmatched:/nowhere", entries[2].ContextMap()["route"])
}
