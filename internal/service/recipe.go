package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuisine/internal/domain"
	"docuisine/internal/repo"
)

// Recipes wraps the generic service with the recipe children: steps and
// ingredient lines are written in the recipe's transaction and removed
// with it.
type Recipes struct {
	*Entity[domain.Recipe, domain.RecipePatch]
	db *repo.DB
}

// RecipeChanges is a recipe patch plus optional replacement children. A nil
// slice pointer leaves those children untouched.
type RecipeChanges struct {
	domain.RecipePatch
	Steps       *[]domain.RecipeStep
	Ingredients *[]domain.RecipeIngredient
}

func NewRecipes(db *repo.DB, l *zap.Logger) *Recipes {
	schema := Schema[domain.Recipe]{
		Name:       "recipe",
		KeyColumns: []string{"name", "user_id"},
		Key:        func(r *domain.Recipe) string { return r.Name },
		Validate:   validateRecipe,
		Conflict: func(r *domain.Recipe) error {
			return domain.Exists("recipe", "recipe %q already exists for user %d", r.Name, r.UserID)
		},
		BeforeDelete: func(tx *gorm.DB, r *domain.Recipe) error {
			if err := deleteChildren(tx, r.ID); err != nil {
				return err
			}
			// ingredients only point at the recipe loosely
			return tx.Model(&domain.Ingredient{}).Where("recipe_id = ?", r.ID).Update("recipe_id", nil).Error
		},
	}
	return &Recipes{
		Entity: NewEntity[domain.Recipe, domain.RecipePatch](db, l, schema),
		db:     db,
	}
}

// Create stores r together with r.Steps and r.Ingredients.
func (s *Recipes) Create(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	steps, lines := r.Steps, r.Ingredients
	if err := checkChildren(steps, lines); err != nil {
		return nil, err
	}
	return s.CreateWith(ctx, r, func(tx *gorm.DB, r *domain.Recipe) error {
		r.Steps, r.Ingredients = steps, lines
		return insertChildren(tx, r)
	})
}

// Detail loads a recipe with its steps (by step number) and ingredient lines.
func (s *Recipes) Detail(ctx context.Context, id int64) (*domain.Recipe, error) {
	var r domain.Recipe
	err := s.db.Conn(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number asc") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ?", id).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("recipe", "recipe with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &r, nil
}

// GetByName finds a recipe by its natural key (name, owner).
func (s *Recipes) GetByName(ctx context.Context, name string, userID int64) (*domain.Recipe, error) {
	return s.GetByKey(ctx, name, userID)
}

// PageByUser pages through the recipes owned by userID in id order.
func (s *Recipes) PageByUser(ctx context.Context, userID int64, offset, limit int) ([]domain.Recipe, int64, error) {
	q := s.db.Conn(ctx).Model(&domain.Recipe{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}
	out := []domain.Recipe{}
	if err := q.Session(&gorm.Session{}).Order("id asc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return out, total, nil
}

// Change applies ch.RecipePatch and replaces whichever children ch carries.
func (s *Recipes) Change(ctx context.Context, id int64, ch RecipeChanges) (*domain.Recipe, error) {
	var steps []domain.RecipeStep
	var lines []domain.RecipeIngredient
	if ch.Steps != nil {
		steps = *ch.Steps
	}
	if ch.Ingredients != nil {
		lines = *ch.Ingredients
	}
	if err := checkChildren(steps, lines); err != nil {
		return nil, err
	}
	return s.UpdateWith(ctx, id, ch.RecipePatch, func(tx *gorm.DB, r *domain.Recipe) error {
		if ch.Steps != nil {
			if _, err := (repo.Table[domain.RecipeStep]{}).DeleteWhere(tx, "recipe_id = ?", r.ID); err != nil {
				return err
			}
			r.Steps = steps
		}
		if ch.Ingredients != nil {
			if _, err := (repo.Table[domain.RecipeIngredient]{}).DeleteWhere(tx, "recipe_id = ?", r.ID); err != nil {
				return err
			}
			r.Ingredients = lines
		}
		return insertChildren(tx, r)
	})
}

func validateRecipe(tx *gorm.DB, r *domain.Recipe) error {
	if err := requireName("recipe", r.Name); err != nil {
		return err
	}
	if r.UserID <= 0 {
		return domain.InvalidArgument("recipe owner is required")
	}
	if err := requireRow[domain.User](tx, "user", r.UserID); err != nil {
		return err
	}
	if r.CookTimeSec < 0 || r.PrepTimeSec < 0 || r.NonBlockingTimeSec < 0 {
		return domain.InvalidArgument("recipe times must not be negative")
	}
	if r.Servings < 1 {
		return domain.InvalidArgument("recipe servings must be at least 1")
	}
	if r.CategoryID != nil {
		if err := requireRow[domain.Category](tx, "category", *r.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// checkChildren rejects input that would otherwise surface as a unique
// violation and be reported as a recipe conflict.
func checkChildren(steps []domain.RecipeStep, lines []domain.RecipeIngredient) error {
	seenStep := make(map[int]bool, len(steps))
	for _, st := range steps {
		if st.StepNumber < 1 {
			return domain.InvalidArgument("step numbers start at 1")
		}
		if st.Instruction == "" {
			return domain.InvalidArgument("step %d has no instruction", st.StepNumber)
		}
		if seenStep[st.StepNumber] {
			return domain.InvalidArgument("step %d is listed twice", st.StepNumber)
		}
		seenStep[st.StepNumber] = true
	}
	seenLine := make(map[int64]bool, len(lines))
	for _, ln := range lines {
		if ln.IngredientID <= 0 {
			return domain.InvalidArgument("ingredient id is required")
		}
		if seenLine[ln.IngredientID] {
			return domain.InvalidArgument("ingredient %d is listed twice", ln.IngredientID)
		}
		if ln.Quantity != nil && *ln.Quantity < 0 {
			return domain.InvalidArgument("quantity of ingredient %d must not be negative", ln.IngredientID)
		}
		seenLine[ln.IngredientID] = true
	}
	return nil
}

func insertChildren(tx *gorm.DB, r *domain.Recipe) error {
	for i := range r.Steps {
		r.Steps[i].ID = 0
		r.Steps[i].RecipeID = r.ID
	}
	if len(r.Ingredients) > 0 {
		ids := make([]int64, len(r.Ingredients))
		for i := range r.Ingredients {
			r.Ingredients[i].ID = 0
			r.Ingredients[i].RecipeID = r.ID
			ids[i] = r.Ingredients[i].IngredientID
		}
		n, err := repo.Table[domain.Ingredient]{}.Count(tx, "id IN ?", ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return domain.InvalidArgument("recipe lists %d unknown ingredient(s)", int64(len(ids))-n)
		}
	}
	out, err := repo.Table[domain.RecipeStep]{}.InsertAll(tx, r.Steps)
	if err != nil {
		return fmt.Errorf("insert steps: %w", err)
	}
	if out != repo.OK {
		return domain.InvalidArgument("recipe %d steps rejected: %s", r.ID, out)
	}
	out, err = repo.Table[domain.RecipeIngredient]{}.InsertAll(tx, r.Ingredients)
	if err != nil {
		return fmt.Errorf("insert ingredient lines: %w", err)
	}
	if out != repo.OK {
		return domain.InvalidArgument("recipe %d ingredient lines rejected: %s", r.ID, out)
	}
	return nil
}

func deleteChildren(tx *gorm.DB, recipeID int64) error {
	if _, err := (repo.Table[domain.RecipeStep]{}).DeleteWhere(tx, "recipe_id = ?", recipeID); err != nil {
		return fmt.Errorf("delete steps of recipe %d: %w", recipeID, err)
	}
	if _, err := (repo.Table[domain.RecipeIngredient]{}).DeleteWhere(tx, "recipe_id = ?", recipeID); err != nil {
		return fmt.Errorf("delete ingredient lines of recipe %d: %w", recipeID, err)
	}
	return nil
}
