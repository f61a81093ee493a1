package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
)

type UserHandler struct{ users *service.Users }

func NewUserHandler(users *service.Users) *UserHandler { return &UserHandler{users: users} }

func (h *UserHandler) Priority() int { return 10 }

type tokenIn struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type tokenOut struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type signUpIn struct {
	Username string  `json:"username" binding:"required,username"`
	Password string  `json:"password" binding:"required,password"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type emailIn struct {
	// UserID defaults to the caller.
	UserID int64  `json:"id"`
	Email  string `json:"email" binding:"omitempty,email,max=255"`
}

type passwordIn struct {
	UserID      int64  `json:"id"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required,password"`
}

func (h *UserHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[tokenIn, tokenOut]{
		Method: http.MethodPost, Path: "/auth/token", Binder: ez.BindForm,
		Handler: func(c *gin.Context, _ *auth.Principal, in *tokenIn) (tokenOut, error) {
			u, err := h.users.Authenticate(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			tok, err := h.users.IssueToken(u)
			if err != nil {
				return tokenOut{}, ez.Internal("issue token failed", err)
			}
			return tokenOut{AccessToken: tok, TokenType: "bearer"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone, Auth: true,
		Handler: func(c *gin.Context, p *auth.Principal, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), p.UserID)
		},
	})

	ez.RegisterAction(e, ez.Action[ez.PageQuery, ez.Page[domain.User]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, MinRole: domain.RoleAdmin,
		Handler: func(c *gin.Context, _ *auth.Principal, q *ez.PageQuery) (ez.Page[domain.User], error) {
			return pageUsers(c, h.users, q)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/users/:id", Binder: ez.BindNone, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.users.Get(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/users/username/:username", Binder: ez.BindNone, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (*domain.User, error) {
			return h.users.GetByUsername(c.Request.Context(), c.Param("username"))
		},
	})

	ez.RegisterAction(e, ez.Action[signUpIn, *domain.User]{
		Method: http.MethodPost, Path: "/users", Binder: ez.BindJSON, Created: true,
		Handler: func(c *gin.Context, _ *auth.Principal, in *signUpIn) (*domain.User, error) {
			return h.users.CreateUser(c.Request.Context(), service.NewUser{
				Username: in.Username, Password: in.Password, Email: in.Email,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[emailIn, *domain.User]{
		Method: http.MethodPut, Path: "/users/email", Binder: ez.BindJSON, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, p *auth.Principal, in *emailIn) (*domain.User, error) {
			id := target(p, in.UserID)
			if !auth.CanActOn(*p, id) {
				return nil, domain.Forbidden("cannot change another user's email")
			}
			return h.users.UpdateEmail(c.Request.Context(), id, in.Email)
		},
	})

	ez.RegisterAction(e, ez.Action[passwordIn, *domain.User]{
		Method: http.MethodPut, Path: "/users/password", Binder: ez.BindJSON, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, p *auth.Principal, in *passwordIn) (*domain.User, error) {
			id := target(p, in.UserID)
			switch {
			case id == p.UserID:
				return h.users.UpdatePassword(c.Request.Context(), id, in.OldPassword, in.NewPassword)
			case auth.CanActOn(*p, id):
				return h.users.SetPassword(c.Request.Context(), id, in.NewPassword)
			default:
				return nil, domain.Forbidden("cannot change another user's password")
			}
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/users/:id", Binder: ez.BindNone, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, p *auth.Principal, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if !auth.CanActOn(*p, id) {
				return nil, domain.Forbidden("cannot delete another user")
			}
			if err := h.users.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}

func target(p *auth.Principal, id int64) int64 {
	if id == 0 {
		return p.UserID
	}
	return id
}

func pageUsers(c *gin.Context, users *service.Users, q *ez.PageQuery) (ez.Page[domain.User], error) {
	items, total, err := users.Page(c.Request.Context(), q.Offset(), q.Size)
	if err != nil {
		return ez.Page[domain.User]{}, err
	}
	if items == nil {
		items = []domain.User{}
	}
	return ez.Page[domain.User]{List: items, Total: total, Page: q.Page, Size: q.Size}, nil
}
