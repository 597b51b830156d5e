package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bids-api/internal/domain"
	"bids-api/pkg/utils"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

// Upsert 先查后写：同一 userId 永远只有一行，并发重复登录是 last-writer-wins，
// 由 user_id 唯一索引兜底。
func (r *TokenRepo) Upsert(ctx context.Context, userID, token string) error {
	var row domain.RefreshToken
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(&domain.RefreshToken{
			ID:     utils.NewID(),
			UserID: userID,
			Token:  token,
		}).Error
	case err != nil:
		return err
	default:
		return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
			Where("user_id = ?", userID).Update("token", token).Error
	}
}

func (r *TokenRepo) FindByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	var row domain.RefreshToken
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}

// DeleteByUserID 无条件删除，重复调用也成功（幂等 signout）
func (r *TokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.RefreshToken{}).Error
}
