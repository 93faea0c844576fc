package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// query keys containing any of these never reach the log
var secretQueryKeys = []string{"password", "token", "secret", "authorization"}

// maskQuery returns a copy of q with credential-like values replaced.
func maskQuery(q url.Values) url.Values {
	if len(q) == 0 {
		return nil
	}
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = v
		lk := strings.ToLower(k)
		for _, s := range secretQueryKeys {
			if strings.Contains(lk, s) {
				out[k] = []string{"****"}
				break
			}
		}
	}
	return out
}

// authScheme names the Authorization scheme without leaking the credential.
func authScheme(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if i := strings.IndexByte(ah, ' '); i > 0 {
		return strings.ToLower(ah[:i])
	}
	return ""
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// AccessLog writes one line per request. Client errors log at warn, server
// errors at error. Requests to the skip paths are not logged.
func AccessLog(l *zap.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched:" + c.Request.URL.Path
		}
		status := c.Writer.Status()
		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user", PrincipalName(c)),
			zap.String("auth", authScheme(c)),
			zap.Int("size", size),
		}
		if q := maskQuery(c.Request.URL.Query()); q != nil {
			fields = append(fields, zap.Any("query", q))
		}
		if ce := l.Check(levelFor(status), "HTTP"); ce != nil {
			ce.Write(fields...)
		}
	}
}
