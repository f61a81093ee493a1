package domain

import "time"

// Timestamps is embedded by every persisted entity.
type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

// Images holds object keys of the pictures attached to an entity.
type Images struct {
	PreviewImg *string `gorm:"size:255" json:"previewImg"`
	Img        *string `gorm:"size:255" json:"img"`
}

func (i *Images) apply(preview, img *string) {
	if preview != nil {
		i.PreviewImg = emptyToNil(*preview)
	}
	if img != nil {
		i.Img = emptyToNil(*img)
	}
}

// emptyToNil lets a patch clear an optional column by sending "".
func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
