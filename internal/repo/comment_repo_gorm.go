package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bids-api/internal/domain"
)

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CommentRepo) ListByBid(ctx context.Context, bidID string, offset, limit int) ([]domain.Comment, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("bid_id = ?", bidID)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cs []domain.Comment
	if err := tx.Order("created_at ASC").Offset(offset).Limit(limit).Find(&cs).Error; err != nil {
		return nil, 0, err
	}
	return cs, total, nil
}

// UpdateScoped 带 (id, authorId, bidId) 三元限定，防止改到别的 bid 或他人的评论
func (r *CommentRepo) UpdateScoped(ctx context.Context, id, authorID, bidID, message string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ? AND author_id = ? AND bid_id = ?", id, authorID, bidID).
		Update("message", message)
	return res.RowsAffected, res.Error
}

// DeleteScoped 评论是唯一做物理删除的实体
func (r *CommentRepo) DeleteScoped(ctx context.Context, id, authorID, bidID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ? AND bid_id = ?", id, authorID, bidID).
		Delete(&domain.Comment{})
	return res.RowsAffected, res.Error
}
