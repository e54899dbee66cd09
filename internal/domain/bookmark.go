package domain

import "time"

type Bookmark struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"size:255;not null"`
	URL      string `gorm:"column:url;size:255;not null"`
	Favorite bool   `gorm:"not null;default:false"`
	UserID   uint   `gorm:"not null;index"`

	// 非空即已归档
	DeletedAt *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"index"`
	UpdatedAt time.Time

	Tags []Tag `gorm:"-"`
}

func (Bookmark) TableName() string { return "bookmarks" }

func (b *Bookmark) Archived() bool { return b.DeletedAt != nil }

func (b *Bookmark) OwnedBy(id Identity) bool { return b.UserID == id.UserID }

// BookmarkTag bookmark 与 tag 的关联行
type BookmarkTag struct {
	ID         uint `gorm:"primaryKey"`
	BookmarkID uint `gorm:"not null;uniqueIndex:idx_bookmark_tag"`
	TagID      uint `gorm:"not null;uniqueIndex:idx_bookmark_tag;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (BookmarkTag) TableName() string { return "bookmark_tag" }

// BookmarkScope 列表范围
type BookmarkScope int

const (
	ScopeActive BookmarkScope = iota
	ScopeFavorites
	ScopeArchived
)
