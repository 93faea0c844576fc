package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"library-api/internal/domain"
	"library-api/pkg/utils"
)

func Test_MapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"action", Forbidden("nope"), 403},
		{"not_found", fmt.Errorf("book x: %w", domain.ErrElementNotFound), 404},
		{"not_available", fmt.Errorf("book x: %w", domain.ErrBookNotAvailable), 400},
		{"duplicate", errors.Join(domain.ErrAlreadyExists, errors.New("UNIQUE constraint failed: users.email")), 409},
		{"password_too_long", fmt.Errorf("hash password: %w", utils.ErrPasswordTooLong), 400},
		{"deadline", context.DeadlineExceeded, 504},
		{"unknown", errors.New("disk on fire"), 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, MapError(tc.err).Code)
		})
	}
	assert.Equal(t, "internal error", MapError(errors.New("secret detail")).Error())
	assert.Equal(t, "already exists", MapError(errors.Join(domain.ErrAlreadyExists, errors.New("users.email"))).Error())
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(h func(*gin.Context, *echoIn) (gin.H, error)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r.Group(""), zap.NewNop()), Action[echoIn, gin.H]{
		Method:  http.MethodPost,
		Path:    "/echo",
		Binder:  BindJSON,
		Handler: h,
	})
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func Test_RegisterAction(t *testing.T) {
	r := newEngine(func(_ *gin.Context, in *echoIn) (gin.H, error) {
		if in.Name == "missing" {
			return nil, fmt.Errorf("user 9: %w", domain.ErrElementNotFound)
		}
		return gin.H{"name": in.Name}, nil
	})

	w := post(r, `{"name":"ann"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{"name":"ann"}}`, w.Body.String())

	w = post(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, `{"name":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"msg":"user 9: element not found","data":{}}`, w.Body.String())
}
