// Package ez registers typed actions on gin groups: bind the input, run the
// handler, map the error, write the envelope.
package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/internal/domain"
	"library-api/internal/transport/http/middleware"
	resp "library-api/internal/transport/http/response"
	"library-api/pkg/utils"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindURI   Binder = "uri"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// AErr carries the envelope code and message for a failed action.
// Err is the cause and is logged, never returned to the client.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if msg, ok := resp.CodeMsgMap[e.Code]; ok {
		return msg
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action describes one endpoint: I is the bound input, O the envelope data.
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // e.g. "/books/:id"
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				resp.Abort(c, resp.CodePayloadTooLarge, "request body too large")
				return
			}
			resp.Abort(c, resp.CodeBadRequest, bindErr.Error())
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			ae := MapError(err)
			if ae.Code >= resp.CodeServerError {
				e.log.Error("action failed",
					zap.String("rid", c.GetString(middleware.KeyRequestID)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			resp.Abort(c, ae.Code, ae.Error())
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// MapError translates domain and action errors into an AErr.
// Unknown errors become a 500 with a generic message.
func MapError(err error) *AErr {
	var ae *AErr
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, domain.ErrElementNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: err.Error()}
	case errors.Is(err, domain.ErrBookNotAvailable):
		return &AErr{Code: resp.CodeBadRequest, Msg: err.Error()}
	case errors.Is(err, utils.ErrPasswordTooLong):
		return &AErr{Code: resp.CodeBadRequest, Msg: utils.ErrPasswordTooLong.Error()}
	case errors.Is(err, domain.ErrAlreadyExists):
		return &AErr{Code: resp.CodeConflict, Msg: "already exists", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Code: resp.CodeGatewayTimeout, Msg: "timeout", Err: err}
	default:
		return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
	}
}
