package domain

type Category struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Images
	Timestamps
}

func (Category) TableName() string { return "categories" }

type CategoryPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	PreviewImg  *string `json:"previewImg"`
	Img         *string `json:"img"`
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = emptyToNil(*p.Description)
	}
	c.Images.apply(p.PreviewImg, p.Img)
}

// Ingredient may be attached to a recipe through the weak RecipeID reference.
type Ingredient struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	RecipeID    *int64  `gorm:"index" json:"recipeId"`
	Images
	Timestamps
}

func (Ingredient) TableName() string { return "ingredients" }

type IngredientPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	RecipeID    *int64  `json:"recipeId"`
	PreviewImg  *string `json:"previewImg"`
	Img         *string `json:"img"`
}

func (p IngredientPatch) Apply(i *Ingredient) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = emptyToNil(*p.Description)
	}
	if p.RecipeID != nil {
		if *p.RecipeID == 0 {
			i.RecipeID = nil
		} else {
			id := *p.RecipeID
			i.RecipeID = &id
		}
	}
	i.Images.apply(p.PreviewImg, p.Img)
}

type Store struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Address     *string `gorm:"size:255" json:"address"`
	Website     *string `gorm:"size:255" json:"website"`
	Images
	Timestamps
}

func (Store) TableName() string { return "stores" }

type StorePatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Website     *string `json:"website" binding:"omitempty,max=255"`
	PreviewImg  *string `json:"previewImg"`
	Img         *string `json:"img"`
}

func (p StorePatch) Apply(s *Store) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = emptyToNil(*p.Description)
	}
	if p.Address != nil {
		s.Address = emptyToNil(*p.Address)
	}
	if p.Website != nil {
		s.Website = emptyToNil(*p.Website)
	}
	s.Images.apply(p.PreviewImg, p.Img)
}
