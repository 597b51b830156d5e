package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	BidStatusPending  = "pending"
	BidStatusResolved = "resolved"
	BidStatusRejected = "rejected"
)

type Bid struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Status     string         `gorm:"size:16;not null;default:pending" json:"status"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	AuthorID   string         `gorm:"size:36;not null;index" json:"authorId"`
	ResolvedBy *string        `gorm:"size:36" json:"resolvedBy"`
	Comment    *string        `gorm:"type:text" json:"comment"` // 处理结论
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bid) TableName() string { return "bids" }

// Comment 是唯一做物理删除的实体
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"authorId"`
	BidID     string    `gorm:"size:36;not null;index" json:"bidId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Comment) TableName() string { return "comments" }

type BidRepository interface {
	Create(ctx context.Context, b *Bid) error
	FindByID(ctx context.Context, id string) (*Bid, error)
	List(ctx context.Context, offset, limit int) ([]Bid, int64, error)
	Update(ctx context.Context, b *Bid) error
	SoftDelete(ctx context.Context, id string) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	ListByBid(ctx context.Context, bidID string, offset, limit int) ([]Comment, int64, error)
	// UpdateScoped 限定 (id, authorId, bidId)，防止跨 bid 或他人评论被改
	UpdateScoped(ctx context.Context, id, authorID, bidID, message string) (int64, error)
	DeleteScoped(ctx context.Context, id, authorID, bidID string) (int64, error)
}
