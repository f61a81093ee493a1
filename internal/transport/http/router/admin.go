package router

import (
	"github.com/gin-gonic/gin"

	"docuisine/internal/domain"
	mdw "docuisine/internal/transport/http/middleware"
)

// NewAdminEngine builds the admin engine; everything under /admin/v1
// requires an admin token.
func NewAdminEngine(d Deps) *gin.Engine {
	r, root := newEngine(d)
	admin := root.Group("/admin/v1", mdw.AuthJWT(d.JWT, true), mdw.RequireRole(domain.RoleAdmin))
	d.Modules.MountAdmin(admin)
	return r
}
