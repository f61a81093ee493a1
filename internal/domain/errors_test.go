package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("update: %w", DuplicateEmail("a@b.c"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
	assert.False(t, errors.Is(err, ErrInUse))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestError_PlainConflictIsNotRefined(t *testing.T) {
	err := Exists("category", "category %q already exists", "Soup")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
	assert.Equal(t, `category "Soup" already exists`, err.Error())
	assert.Equal(t, "category", err.Entity())
}

func TestError_Cause(t *testing.T) {
	cause := errors.New("disk full")
	err := InvalidArgument("bad image").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestKindOf_Foreign(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Nil(t, As(nil))
}

func TestRole(t *testing.T) {
	r, ok := ParseRole(" A ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)
	_, ok = ParseRole("root")
	assert.False(t, ok)
	assert.Less(t, RoleUser.Rank(), RoleAdmin.Rank())
	assert.False(t, Role("chef").Valid())
}

func TestPatchApply_OnlySuppliedFields(t *testing.T) {
	desc := "broth"
	c := Category{Name: "Soup", Description: &desc}
	name := "Soups"
	CategoryPatch{Name: &name}.Apply(&c)
	assert.Equal(t, "Soups", c.Name)
	assert.Equal(t, "broth", *c.Description)

	empty := ""
	CategoryPatch{Description: &empty}.Apply(&c)
	assert.Nil(t, c.Description)
}

func TestIngredientPatch_ClearsRecipe(t *testing.T) {
	rid := int64(5)
	i := Ingredient{Name: "Salt", RecipeID: &rid}
	zero := int64(0)
	IngredientPatch{RecipeID: &zero}.Apply(&i)
	assert.Nil(t, i.RecipeID)
}
