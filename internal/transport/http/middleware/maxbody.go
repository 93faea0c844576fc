package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "library-api/internal/transport/http/response"
)

// MaxBodyBytes limits request bodies to n bytes. Readers past the limit get
// an *http.MaxBytesError, which actions report as 413.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodePayloadTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
