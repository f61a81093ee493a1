package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/ez"
)

type RecipeHandler struct{ recipes *service.Recipes }

func NewRecipeHandler(r *service.Recipes) *RecipeHandler { return &RecipeHandler{recipes: r} }

type stepIn struct {
	StepNumber  int    `json:"stepNumber" binding:"min=1"`
	Instruction string `json:"instruction" binding:"required"`
}

type lineIn struct {
	IngredientID int64    `json:"ingredientId" binding:"required,min=1"`
	Quantity     *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit         *string  `json:"unit" binding:"omitempty,max=32"`
	Notes        *string  `json:"notes" binding:"omitempty,max=255"`
}

// recipeIn is a recipe patch plus optional children; absent children are
// left as they are on update.
type recipeIn struct {
	domain.RecipePatch
	Steps       *[]stepIn `json:"steps" binding:"omitempty,dive"`
	Ingredients *[]lineIn `json:"ingredients" binding:"omitempty,dive"`
}

func (in *recipeIn) steps() *[]domain.RecipeStep {
	if in.Steps == nil {
		return nil
	}
	out := make([]domain.RecipeStep, 0, len(*in.Steps))
	for _, s := range *in.Steps {
		out = append(out, domain.RecipeStep{StepNumber: s.StepNumber, Instruction: s.Instruction})
	}
	return &out
}

func (in *recipeIn) lines() *[]domain.RecipeIngredient {
	if in.Ingredients == nil {
		return nil
	}
	out := make([]domain.RecipeIngredient, 0, len(*in.Ingredients))
	for _, l := range *in.Ingredients {
		out = append(out, domain.RecipeIngredient{
			IngredientID: l.IngredientID, Quantity: l.Quantity, Unit: l.Unit, Notes: l.Notes,
		})
	}
	return &out
}

type recipeListQ struct {
	ez.PageQuery
	UserID int64 `form:"userId" binding:"omitempty,min=1"`
}

func (h *RecipeHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[recipeListQ, ez.Page[domain.Recipe]]{
		Method: http.MethodGet, Path: "/recipes", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *auth.Principal, q *recipeListQ) (ez.Page[domain.Recipe], error) {
			var (
				items []domain.Recipe
				total int64
				err   error
			)
			if q.UserID > 0 {
				items, total, err = h.recipes.PageByUser(c.Request.Context(), q.UserID, q.Offset(), q.Size)
			} else {
				items, total, err = h.recipes.Page(c.Request.Context(), q.Offset(), q.Size)
			}
			if err != nil {
				return ez.Page[domain.Recipe]{}, err
			}
			if items == nil {
				items = []domain.Recipe{}
			}
			return ez.Page[domain.Recipe]{List: items, Total: total, Page: q.Page, Size: q.Size}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Recipe]{
		Method: http.MethodGet, Path: "/recipes/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (*domain.Recipe, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.recipes.Detail(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[recipeIn, *domain.Recipe]{
		Method: http.MethodPost, Path: "/recipes", Binder: ez.BindJSON, MinRole: domain.RoleUser, Created: true,
		Handler: func(c *gin.Context, p *auth.Principal, in *recipeIn) (*domain.Recipe, error) {
			r := &domain.Recipe{UserID: p.UserID, Servings: 1}
			in.Apply(r)
			if s := in.steps(); s != nil {
				r.Steps = *s
			}
			if l := in.lines(); l != nil {
				r.Ingredients = *l
			}
			if _, err := h.recipes.Create(c.Request.Context(), r); err != nil {
				return nil, err
			}
			return h.recipes.Detail(c.Request.Context(), r.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[recipeIn, *domain.Recipe]{
		Method: http.MethodPut, Path: "/recipes/:id", Binder: ez.BindJSON, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, p *auth.Principal, in *recipeIn) (*domain.Recipe, error) {
			id, err := h.owned(c, p)
			if err != nil {
				return nil, err
			}
			ch := service.RecipeChanges{RecipePatch: in.RecipePatch, Steps: in.steps(), Ingredients: in.lines()}
			if _, err := h.recipes.Change(c.Request.Context(), id, ch); err != nil {
				return nil, err
			}
			return h.recipes.Detail(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/recipes/:id", Binder: ez.BindNone, MinRole: domain.RoleUser,
		Handler: func(c *gin.Context, p *auth.Principal, _ *struct{}) (gin.H, error) {
			id, err := h.owned(c, p)
			if err != nil {
				return nil, err
			}
			if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}

// owned resolves :id and checks that p owns the recipe or is an admin.
func (h *RecipeHandler) owned(c *gin.Context, p *auth.Principal) (int64, error) {
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return 0, err
	}
	r, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		return 0, err
	}
	if !auth.CanActOn(*p, r.UserID) {
		return 0, domain.Forbidden("recipe %d belongs to another user", id)
	}
	return id, nil
}
