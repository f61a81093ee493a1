package handler

import (
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
)

// CatalogHandler serves categories, ingredients and stores. Reads are
// public, writes need a user and deletes an admin.
type CatalogHandler struct {
	categories  *service.Categories
	ingredients *service.Ingredients
	stores      *service.Stores
}

func NewCatalogHandler(c *service.Categories, i *service.Ingredients, s *service.Stores) *CatalogHandler {
	return &CatalogHandler{categories: c, ingredients: i, stores: s}
}

func (h *CatalogHandler) MountAPI(e ez.EZ) {
	ez.Crud(e, ez.CrudConfig[domain.Category, domain.CategoryPatch]{
		Svc: h.categories, Path: "/categories", KeyParam: "name",
		WriteRole: domain.RoleUser, DeleteRole: domain.RoleAdmin,
	})
	ez.Crud(e, ez.CrudConfig[domain.Ingredient, domain.IngredientPatch]{
		Svc: h.ingredients, Path: "/ingredients", KeyParam: "name",
		WriteRole: domain.RoleUser, DeleteRole: domain.RoleAdmin,
	})
	ez.Crud(e, ez.CrudConfig[domain.Store, domain.StorePatch]{
		Svc: h.stores, Path: "/stores", KeyParam: "name",
		WriteRole: domain.RoleUser, DeleteRole: domain.RoleAdmin,
	})
}
