package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:191;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	APIKeyID     string    `gorm:"column:api_key_id;size:36;index" json:"-"`  // 当前有效 API key 的 jti
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Identity 已鉴权的请求方，显式传入每个业务操作
type Identity struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	KeyID  string `json:"kid"`
}

func (i Identity) Authenticated() bool { return i.UserID != 0 }

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// UserWithStats 管理端列表行
type UserWithStats struct {
	User
	BookmarksCount int64 `json:"bookmarksCount"`
}
