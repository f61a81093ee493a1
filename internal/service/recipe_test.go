package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuisine/internal/domain"
	"docuisine/internal/repo"
	"docuisine/pkg/utils"
)

type kitchen struct {
	db          *repo.DB
	users       *Users
	categories  *Categories
	ingredients *Ingredients
	recipes     *Recipes
	owner       *domain.User
}

func newKitchen(t *testing.T) *kitchen {
	t.Helper()
	db := newTestDB(t)
	k := &kitchen{
		db:          db,
		users:       NewUsers(db, nil, fastHash, nil),
		categories:  NewCategories(db, nil),
		ingredients: NewIngredients(db, nil),
		recipes:     NewRecipes(db, nil),
	}
	owner, err := k.users.CreateUser(context.Background(), NewUser{Username: "chef", Password: "pw"})
	require.NoError(t, err)
	k.owner = owner
	return k
}

var fastHash = utils.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func (k *kitchen) ingredient(t *testing.T, name string) *domain.Ingredient {
	t.Helper()
	i, err := k.ingredients.Create(context.Background(), &domain.Ingredient{Name: name})
	require.NoError(t, err)
	return i
}

func TestRecipes_CreateWithChildren(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	cat, err := k.categories.Create(ctx, &domain.Category{Name: "Soup"})
	require.NoError(t, err)
	leek := k.ingredient(t, "Leek")

	r, err := k.recipes.Create(ctx, &domain.Recipe{
		Name:       "Leek soup",
		UserID:     k.owner.ID,
		CategoryID: &cat.ID,
		Servings:   4,
		Steps: []domain.RecipeStep{
			{StepNumber: 2, Instruction: "Simmer"},
			{StepNumber: 1, Instruction: "Chop"},
		},
		Ingredients: []domain.RecipeIngredient{{IngredientID: leek.ID, Quantity: ptr(2.0), Unit: ptr("pc")}},
	})
	require.NoError(t, err)

	got, err := k.recipes.Detail(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "Chop", got.Steps[0].Instruction)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, leek.ID, got.Ingredients[0].IngredientID)
}

func TestRecipes_UniquePerOwner(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	other, err := k.users.CreateUser(ctx, NewUser{Username: "sous", Password: "pw"})
	require.NoError(t, err)

	_, err = k.recipes.Create(ctx, &domain.Recipe{Name: "Pancakes", UserID: k.owner.ID, Servings: 2})
	require.NoError(t, err)
	_, err = k.recipes.Create(ctx, &domain.Recipe{Name: "Pancakes", UserID: other.ID, Servings: 2})
	require.NoError(t, err)

	_, err = k.recipes.Create(ctx, &domain.Recipe{Name: "Pancakes", UserID: k.owner.ID, Servings: 2})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := k.recipes.GetByName(ctx, "Pancakes", other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.UserID)
}

func TestRecipes_UnknownIngredientRollsBack(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)

	_, err := k.recipes.Create(ctx, &domain.Recipe{
		Name: "Ghost stew", UserID: k.owner.ID, Servings: 1,
		Ingredients: []domain.RecipeIngredient{{IngredientID: 999}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	all, err := k.recipes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecipes_DuplicateStepNumber(t *testing.T) {
	k := newKitchen(t)
	_, err := k.recipes.Create(context.Background(), &domain.Recipe{
		Name: "Toast", UserID: k.owner.ID, Servings: 1,
		Steps: []domain.RecipeStep{{StepNumber: 1, Instruction: "a"}, {StepNumber: 1, Instruction: "b"}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestRecipes_UnknownCategory(t *testing.T) {
	k := newKitchen(t)
	_, err := k.recipes.Create(context.Background(), &domain.Recipe{Name: "Toast", UserID: k.owner.ID, Servings: 1, CategoryID: ptr(int64(77))})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestRecipes_PageByUser(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	for _, name := range []string{"A", "B", "C"} {
		_, err := k.recipes.Create(ctx, &domain.Recipe{Name: name, UserID: k.owner.ID, Servings: 1})
		require.NoError(t, err)
	}

	items, total, err := k.recipes.PageByUser(ctx, k.owner.ID, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)

	items, total, err = k.recipes.PageByUser(ctx, k.owner.ID+1, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRecipes_UnknownOwner(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	_, err := k.recipes.Create(ctx, &domain.Recipe{Name: "Ghost", UserID: 999, Servings: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	assert.False(t, errors.Is(err, domain.ErrConflict))

	n, err := k.recipes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecipes_ChangeReplacesSteps(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	r, err := k.recipes.Create(ctx, &domain.Recipe{
		Name: "Rice", UserID: k.owner.ID, Servings: 2,
		Steps: []domain.RecipeStep{{StepNumber: 1, Instruction: "Rinse"}},
	})
	require.NoError(t, err)

	steps := []domain.RecipeStep{{StepNumber: 1, Instruction: "Boil"}, {StepNumber: 2, Instruction: "Steam"}}
	_, err = k.recipes.Change(ctx, r.ID, RecipeChanges{
		RecipePatch: domain.RecipePatch{Servings: ptr(3)},
		Steps:       &steps,
	})
	require.NoError(t, err)

	got, err := k.recipes.Detail(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Servings)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "Boil", got.Steps[0].Instruction)
}

func TestRecipes_DeleteCascadesAndNullifies(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	salt := k.ingredient(t, "Salt")
	r, err := k.recipes.Create(ctx, &domain.Recipe{
		Name: "Brine", UserID: k.owner.ID, Servings: 1,
		Steps:       []domain.RecipeStep{{StepNumber: 1, Instruction: "Dissolve"}},
		Ingredients: []domain.RecipeIngredient{{IngredientID: salt.ID}},
	})
	require.NoError(t, err)
	_, err = k.ingredients.Update(ctx, salt.ID, domain.IngredientPatch{RecipeID: &r.ID})
	require.NoError(t, err)

	require.NoError(t, k.recipes.Delete(ctx, r.ID))

	_, err = k.recipes.Detail(ctx, r.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	conn := k.db.Conn(ctx)
	steps, err := repo.Table[domain.RecipeStep]{}.Count(conn, "recipe_id = ?", r.ID)
	require.NoError(t, err)
	assert.Zero(t, steps)
	lines, err := repo.Table[domain.RecipeIngredient]{}.Count(conn, "recipe_id = ?", r.ID)
	require.NoError(t, err)
	assert.Zero(t, lines)

	got, err := k.ingredients.Get(ctx, salt.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RecipeID)
}

func TestDeletePolicy_Restrict(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	cat, err := k.categories.Create(ctx, &domain.Category{Name: "Bread"})
	require.NoError(t, err)
	flour := k.ingredient(t, "Flour")
	_, err = k.recipes.Create(ctx, &domain.Recipe{
		Name: "Loaf", UserID: k.owner.ID, Servings: 1, CategoryID: &cat.ID,
		Ingredients: []domain.RecipeIngredient{{IngredientID: flour.ID}},
	})
	require.NoError(t, err)

	assert.True(t, errors.Is(k.categories.Delete(ctx, cat.ID), domain.ErrInUse))
	assert.True(t, errors.Is(k.ingredients.Delete(ctx, flour.ID), domain.ErrInUse))
	assert.True(t, errors.Is(k.users.Delete(ctx, k.owner.ID), domain.ErrInUse))

	_, err = k.categories.Get(ctx, cat.ID)
	assert.NoError(t, err)
}

func TestIngredients_RecipeReferenceMustExist(t *testing.T) {
	k := newKitchen(t)
	_, err := k.ingredients.Create(context.Background(), &domain.Ingredient{Name: "Basil", RecipeID: ptr(int64(5))})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
