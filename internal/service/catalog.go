package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuisine/internal/domain"
	"docuisine/internal/repo"
)

type (
	Categories  = Entity[domain.Category, domain.CategoryPatch]
	Ingredients = Entity[domain.Ingredient, domain.IngredientPatch]
	Stores      = Entity[domain.Store, domain.StorePatch]
)

// NewCategories refuses to delete a category while recipes use it.
func NewCategories(db *repo.DB, l *zap.Logger) *Categories {
	return NewEntity[domain.Category, domain.CategoryPatch](db, l, Schema[domain.Category]{
		Name:       "category",
		KeyColumns: []string{"name"},
		Key:        func(c *domain.Category) string { return c.Name },
		Validate: func(_ *gorm.DB, c *domain.Category) error {
			return requireName("category", c.Name)
		},
		BeforeDelete: func(tx *gorm.DB, c *domain.Category) error {
			n, err := repo.Table[domain.Recipe]{}.Count(tx, "category_id = ?", c.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.InUse("category", "category %q is used by %d recipe(s)", c.Name, n)
			}
			return nil
		},
	})
}

// NewIngredients refuses to delete an ingredient listed in a recipe.
func NewIngredients(db *repo.DB, l *zap.Logger) *Ingredients {
	return NewEntity[domain.Ingredient, domain.IngredientPatch](db, l, Schema[domain.Ingredient]{
		Name:       "ingredient",
		KeyColumns: []string{"name"},
		Key:        func(i *domain.Ingredient) string { return i.Name },
		Validate: func(tx *gorm.DB, i *domain.Ingredient) error {
			if err := requireName("ingredient", i.Name); err != nil {
				return err
			}
			if i.RecipeID == nil {
				return nil
			}
			return requireRow[domain.Recipe](tx, "recipe", *i.RecipeID)
		},
		BeforeDelete: func(tx *gorm.DB, i *domain.Ingredient) error {
			n, err := repo.Table[domain.RecipeIngredient]{}.Count(tx, "ingredient_id = ?", i.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.InUse("ingredient", "ingredient %q is used by %d recipe(s)", i.Name, n)
			}
			return nil
		},
	})
}

func NewStores(db *repo.DB, l *zap.Logger) *Stores {
	return NewEntity[domain.Store, domain.StorePatch](db, l, Schema[domain.Store]{
		Name:       "store",
		KeyColumns: []string{"name"},
		Key:        func(s *domain.Store) string { return s.Name },
		Validate: func(_ *gorm.DB, s *domain.Store) error {
			return requireName("store", s.Name)
		},
	})
}

func requireName(entity, name string) error {
	if name == "" {
		return domain.InvalidArgument("%s name must not be empty", entity)
	}
	return nil
}

// requireRow reports a dangling reference as an invalid argument.
func requireRow[T any](tx *gorm.DB, entity string, id int64) error {
	m, err := repo.Table[T]{}.Get(tx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.InvalidArgument("%s with id %d does not exist", entity, id)
	}
	return nil
}
