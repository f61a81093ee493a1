package domain

// Recipe is owned by a user and unique per (name, owner).
type Recipe struct {
	ID                 int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string             `gorm:"size:128;not null;uniqueIndex:ux_recipes_name_user,priority:1" json:"name"`
	UserID             int64              `gorm:"not null;uniqueIndex:ux_recipes_name_user,priority:2" json:"userId"`
	CategoryID         *int64             `gorm:"index" json:"categoryId"`
	CookTimeSec        int                `gorm:"not null;default:0" json:"cookTimeSec"`
	PrepTimeSec        int                `gorm:"not null;default:0" json:"prepTimeSec"`
	NonBlockingTimeSec int                `gorm:"not null;default:0" json:"nonBlockingTimeSec"`
	Servings           int                `gorm:"not null;default:1" json:"servings"`
	Description        *string            `gorm:"type:text" json:"description"`
	Steps              []RecipeStep       `gorm:"foreignKey:RecipeID" json:"steps,omitempty"`
	Ingredients        []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	Images
	Timestamps
}

func (Recipe) TableName() string { return "recipes" }

type RecipeStep struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID    int64  `gorm:"not null;uniqueIndex:ux_recipe_steps_number,priority:1" json:"recipeId"`
	StepNumber  int    `gorm:"not null;uniqueIndex:ux_recipe_steps_number,priority:2" json:"stepNumber"`
	Instruction string `gorm:"type:text;not null" json:"instruction"`
}

func (RecipeStep) TableName() string { return "recipe_steps" }

type RecipeIngredient struct {
	ID           int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID     int64    `gorm:"not null;uniqueIndex:ux_recipe_ingredients_line,priority:1" json:"recipeId"`
	IngredientID int64    `gorm:"not null;index;uniqueIndex:ux_recipe_ingredients_line,priority:2" json:"ingredientId"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `gorm:"size:32" json:"unit"`
	Notes        *string  `gorm:"size:255" json:"notes"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

type RecipePatch struct {
	Name               *string `json:"name" binding:"omitempty,min=1,max=128"`
	CategoryID         *int64  `json:"categoryId"`
	CookTimeSec        *int    `json:"cookTimeSec" binding:"omitempty,min=0"`
	PrepTimeSec        *int    `json:"prepTimeSec" binding:"omitempty,min=0"`
	NonBlockingTimeSec *int    `json:"nonBlockingTimeSec" binding:"omitempty,min=0"`
	Servings           *int    `json:"servings" binding:"omitempty,min=1"`
	Description        *string `json:"description"`
	PreviewImg         *string `json:"previewImg"`
	Img                *string `json:"img"`
}

func (p RecipePatch) Apply(r *Recipe) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.CategoryID != nil {
		if *p.CategoryID == 0 {
			r.CategoryID = nil
		} else {
			id := *p.CategoryID
			r.CategoryID = &id
		}
	}
	if p.CookTimeSec != nil {
		r.CookTimeSec = *p.CookTimeSec
	}
	if p.PrepTimeSec != nil {
		r.PrepTimeSec = *p.PrepTimeSec
	}
	if p.NonBlockingTimeSec != nil {
		r.NonBlockingTimeSec = *p.NonBlockingTimeSec
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.Description != nil {
		r.Description = emptyToNil(*p.Description)
	}
	r.Images.apply(p.PreviewImg, p.Img)
}

// Models lists every persisted type in dependency order, for AutoMigrate.
func Models() []any {
	return []any{
		&User{}, &Category{}, &Store{}, &Recipe{}, &Ingredient{},
		&RecipeStep{}, &RecipeIngredient{},
	}
}
