package handler

import (
	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
)

type ImageHandler struct{ images *service.Images }

func NewImageHandler(images *service.Images) *ImageHandler { return &ImageHandler{images: images} }

func (h *ImageHandler) MountAPI(e ez.EZ) {
	ez.POSTFILE(e, "/images", "file", domain.RoleUser, func(c *gin.Context, _ *auth.Principal, data []byte) (service.Upload, error) {
		return h.images.Upload(c.Request.Context(), data)
	})
}
