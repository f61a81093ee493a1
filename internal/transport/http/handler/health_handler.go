package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
	resp "docuisine/internal/transport/http/response"
)

const Greeting = "Hello, from Docuisine!"

// HealthHandler serves the greeting, the health check, the first-user
// bootstrap and the admin configuration report.
type HealthHandler struct {
	health *service.Health
	users  *service.Users
}

func NewHealthHandler(health *service.Health, users *service.Users) *HealthHandler {
	return &HealthHandler{health: health, users: users}
}

func (h *HealthHandler) Priority() int { return 0 }

// MountRoot mounts the unversioned routes.
func (h *HealthHandler) MountRoot(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, string]{
		Method: http.MethodGet, Path: "/", Binder: ez.BindNone,
		Handler: func(*gin.Context, *auth.Principal, *struct{}) (string, error) { return Greeting, nil },
	})
	// the health check reports its status in the HTTP code as well
	e.Routes().GET("/health", func(c *gin.Context) {
		st := h.health.Check(c.Request.Context())
		if st.Status != service.StatusHealthy {
			c.JSON(http.StatusServiceUnavailable, resp.New(resp.CodeUnavailable, st.Status, st))
			return
		}
		resp.JSON(c, resp.OK(st))
	})
}

func (h *HealthHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, service.Configuration]{
		Method: http.MethodGet, Path: "/health/configuration", Binder: ez.BindNone, MinRole: domain.RoleAdmin,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (service.Configuration, error) {
			return h.health.Configuration(c.Request.Context()), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, bool]{
		Method: http.MethodGet, Path: "/init/existing-root-user", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (bool, error) {
			return h.users.HasUsers(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[signUpIn, *domain.User]{
		Method: http.MethodPost, Path: "/init/create-first-user", Binder: ez.BindJSON, Created: true,
		Handler: func(c *gin.Context, _ *auth.Principal, in *signUpIn) (*domain.User, error) {
			return h.users.CreateFirstUser(c.Request.Context(), service.NewUser{
				Username: in.Username, Password: in.Password, Email: in.Email,
			})
		},
	})
}
