package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/internal/core/auth"
	"library-api/internal/transport/http/ez"
	mdw "library-api/internal/transport/http/middleware"
)

// AuthHandler exchanges an authenticated request for a bearer token.
type AuthHandler struct {
	jwt *auth.JWTer
	log *zap.Logger
}

func NewAuthHandler(j *auth.JWTer, l *zap.Logger) *AuthHandler {
	return &AuthHandler{jwt: j, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

type tokenOut struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/token",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (tokenOut, error) {
			p := mdw.PrincipalFrom(c)
			if p == nil {
				return tokenOut{}, ez.Unauthorized("")
			}
			tok, exp, err := h.jwt.Issue(p)
			if err != nil {
				return tokenOut{}, ez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok, ExpiresAt: exp}, nil
		},
	})
}
