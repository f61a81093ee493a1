package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
)

// AdminHandler serves /admin/v1. The group is already restricted to admins.
type AdminHandler struct {
	users  *service.Users
	health *service.Health
}

func NewAdminHandler(users *service.Users, health *service.Health) *AdminHandler {
	return &AdminHandler{users: users, health: health}
}

type userListQ struct {
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Q      string `form:"q"` // matches username or email
}

type userListOut struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

type roleIn struct {
	Role string `json:"role" binding:"required"`
}

type logsQ struct {
	Limit int `form:"limit,default=100" binding:"min=0"`
}

func (h *AdminHandler) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[userListQ, userListOut]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *auth.Principal, in *userListQ) (userListOut, error) {
			items, total, err := h.users.Search(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return userListOut{}, err
			}
			if items == nil {
				items = []domain.User{}
			}
			return userListOut{Total: total, Items: items}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[roleIn, *domain.User]{
		Method: http.MethodPut, Path: "/users/:id/role", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p *auth.Principal, in *roleIn) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			role, ok := domain.ParseRole(in.Role)
			if !ok {
				return nil, ez.BadRequest("unknown role " + in.Role)
			}
			if id == p.UserID && role != domain.RoleAdmin {
				return nil, domain.Forbidden("admins cannot demote themselves")
			}
			return h.users.SetRole(c.Request.Context(), id, role)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/users/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.users.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[logsQ, []string]{
		Method: http.MethodGet, Path: "/logs", Binder: ez.BindQuery,
		Handler: func(_ *gin.Context, _ *auth.Principal, in *logsQ) ([]string, error) {
			lines := h.health.Logs(in.Limit)
			if lines == nil {
				lines = []string{}
			}
			return lines, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.Configuration]{
		Method: http.MethodGet, Path: "/configuration", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (service.Configuration, error) {
			return h.health.Configuration(c.Request.Context()), nil
		},
	})
}
