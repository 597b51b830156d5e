package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string         `gorm:"size:191;not null" json:"-"` // bcrypt 哈希，永不下发
	FirstName string         `gorm:"size:64" json:"firstName"`
	LastName  string         `gorm:"size:64" json:"lastName"`
	Gender    string         `gorm:"size:16" json:"gender"`
	IsAdmin   bool           `gorm:"not null;default:false" json:"isAdmin"`
	Avatar    *string        `gorm:"size:255" json:"avatar"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// RefreshToken 每个用户至多一行（userId 唯一索引）
type RefreshToken struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	Token  string `gorm:"size:512;not null" json:"-"`
}

func (RefreshToken) TableName() string { return "jwts" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByUsernameOrEmail 只查未软删的用户（注册查重用）
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	// FindDeleted 含软删行查找（恢复资料用）
	FindDeleted(ctx context.Context, username, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type TokenRepository interface {
	// Upsert 同一 userId 覆盖写入，不会产生第二行
	Upsert(ctx context.Context, userID, token string) error
	FindByUserID(ctx context.Context, userID string) (*RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
