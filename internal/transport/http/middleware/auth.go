package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/internal/core/auth"
	"library-api/internal/service"
	resp "library-api/internal/transport/http/response"
)

const KeyPrincipal = "principal"

// Authenticator verifies HTTP Basic credentials and re-checks token
// principals against the user store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.Principal, error)
	Resolve(ctx context.Context, claimed *auth.Principal) (*auth.Principal, error)
}

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	PrincipalFromToken(token string) (*auth.Principal, error)
}

// Authenticate resolves the caller from the Authorization header.
// Requests without the header continue anonymously; bad credentials stop with 401.
// tokens may be nil, in which case bearer tokens are rejected.
// A valid token only counts while its account exists with the same password.
func Authenticate(users Authenticator, tokens TokenVerifier, realm string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}

		var (
			p   *auth.Principal
			err error
		)
		switch {
		case strings.HasPrefix(ah, "Basic "):
			user, pass, ok := c.Request.BasicAuth()
			if !ok {
				challenge(c, realm, "malformed basic credentials")
				return
			}
			p, err = users.Authenticate(c.Request.Context(), user, pass)
		case strings.HasPrefix(ah, "Bearer ") && tokens != nil:
			p, err = tokens.PrincipalFromToken(strings.TrimPrefix(ah, "Bearer "))
			if err != nil {
				challenge(c, realm, "invalid credentials")
				return
			}
			p, err = users.Resolve(c.Request.Context(), p)
		default:
			challenge(c, realm, "unsupported authorization scheme")
			return
		}
		if err != nil && !errors.Is(err, service.ErrInvalidCredentials) {
			l.Error("authenticate",
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.Error(err),
			)
			resp.Abort(c, resp.CodeServerError, "internal error")
			return
		}
		if err != nil || p == nil {
			challenge(c, realm, "invalid credentials")
			return
		}

		c.Set(KeyPrincipal, p)
		c.Next()
	}
}

// Authorize applies policy to the matched route. It must run after Authenticate.
func Authorize(policy auth.Policy, realm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch policy.Decide(PrincipalFrom(c), c.Request.Method, c.FullPath(), c.Param("id")) {
		case auth.Allow:
			c.Next()
		case auth.Unauthenticated:
			challenge(c, realm, "")
		default:
			resp.Abort(c, resp.CodeForbidden, "")
		}
	}
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous requests.
func PrincipalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func PrincipalName(c *gin.Context) string {
	if p := PrincipalFrom(c); p != nil {
		return p.Username
	}
	return ""
}

func challenge(c *gin.Context, realm, msg string) {
	c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
	resp.Abort(c, resp.CodeUnauthorized, msg)
}
