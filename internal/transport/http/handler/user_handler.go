package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

func (h *UserHandler) Priority() int { return 30 }

type accountIn struct {
	Username string `json:"username" binding:"required,max=64"`
	Name     string `json:"name"     binding:"omitempty,max=128"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

func (in *accountIn) data() service.AccountData {
	return service.AccountData{Username: in.Username, Name: in.Name, Email: in.Email, Password: in.Password}
}

type userIDOut struct {
	ID int64 `json:"id"`
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[accountIn, service.UserView]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *accountIn) (service.UserView, error) {
			return h.svc.Save(c.Request.Context(), in.data())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.UserView, error) {
			return h.svc.FindAll(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			id, err := userID(c)
			if err != nil {
				return service.UserView{}, err
			}
			return h.svc.ShowByID(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[accountIn, userIDOut]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *accountIn) (userIDOut, error) {
			id, err := userID(c)
			if err != nil {
				return userIDOut{}, err
			}
			if err := h.svc.Update(c.Request.Context(), id, in.data()); err != nil {
				return userIDOut{}, err
			}
			return userIDOut{ID: id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, userIDOut]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userIDOut, error) {
			id, err := userID(c)
			if err != nil {
				return userIDOut{}, err
			}
			if err := h.svc.DeleteByID(c.Request.Context(), id); err != nil {
				return userIDOut{}, err
			}
			return userIDOut{ID: id}, nil
		},
	})
}

func userID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, ez.BadRequest("malformed user id")
	}
	return id, nil
}
