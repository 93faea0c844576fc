package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
	"library-api/pkg/utils"
)

type BookHandler struct {
	svc *service.BookService
	log *zap.Logger
}

func NewBookHandler(svc *service.BookService, l *zap.Logger) *BookHandler {
	return &BookHandler{svc: svc, log: l}
}

func (h *BookHandler) Priority() int { return 20 }

type bookIn struct {
	Title string `json:"title" binding:"required"`
	ISBN  string `json:"isbn"  binding:"required"`
}

type bookOut struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
}

type bookIDIn struct {
	ID string `json:"id" binding:"required"`
}

type borrowIn struct {
	BookID string `json:"bookId" binding:"required"`
	UserID int64  `json:"userId" binding:"required"`
}

type borrowOut struct {
	BookID string `json:"bookId"`
	UserID int64  `json:"userId"`
}

type returnIn struct {
	BookID string `json:"bookId" binding:"required"`
}

type returnOut struct {
	BookID string `json:"bookId"`
}

func (h *BookHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[bookIn, bookOut]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *bookIn) (bookOut, error) {
			b, err := h.svc.Save(c.Request.Context(), in.Title, in.ISBN)
			if err != nil {
				return bookOut{}, err
			}
			return bookOut{ID: b.ID, Title: b.Title, ISBN: b.ISBN}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.BookView]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.BookView, error) {
			return h.svc.FindAll(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.BookView]{
		Method: http.MethodGet,
		Path:   "/books/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.BookView, error) {
			id := c.Param("id")
			if err := checkBookID(id); err != nil {
				return service.BookView{}, err
			}
			return h.svc.ShowByID(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[bookIDIn, bookIDIn]{
		Method: http.MethodDelete,
		Path:   "/books",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *bookIDIn) (bookIDIn, error) {
			if err := checkBookID(in.ID); err != nil {
				return bookIDIn{}, err
			}
			if err := h.svc.DeleteByID(c.Request.Context(), in.ID); err != nil {
				return bookIDIn{}, err
			}
			return *in, nil
		},
	})

	ez.RegisterAction(e, ez.Action[borrowIn, borrowOut]{
		Method: http.MethodPost,
		Path:   "/books/borrow",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *borrowIn) (borrowOut, error) {
			if err := checkBookID(in.BookID); err != nil {
				return borrowOut{}, err
			}
			if err := h.svc.BorrowBook(c.Request.Context(), in.BookID, in.UserID); err != nil {
				return borrowOut{}, err
			}
			return borrowOut{BookID: in.BookID, UserID: in.UserID}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[returnIn, returnOut]{
		Method: http.MethodPost,
		Path:   "/books/return",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *returnIn) (returnOut, error) {
			if err := checkBookID(in.BookID); err != nil {
				return returnOut{}, err
			}
			if err := h.svc.ReturnBook(c.Request.Context(), in.BookID); err != nil {
				return returnOut{}, err
			}
			return returnOut{BookID: in.BookID}, nil
		},
	})
}

// checkBookID rejects ids that no stored book can have.
func checkBookID(id string) error {
	if !utils.ValidID(id) {
		return ez.BadRequest("malformed book id")
	}
	return nil
}
