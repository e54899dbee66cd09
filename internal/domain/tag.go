package domain

import (
	"time"

	"gorm.io/gorm"

	"bookmarks-api/pkg/utils"
)

type Tag struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_tags_name_user"`
	Slug      string    `gorm:"size:255;not null;index"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_name_user;index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Tag) TableName() string { return "tags" }

// BeforeSave slug 始终由 name 推导
func (t *Tag) BeforeSave(*gorm.DB) error {
	t.Slug = utils.Slugify(t.Name)
	return nil
}

func (t *Tag) OwnedBy(id Identity) bool { return t.UserID == id.UserID }
