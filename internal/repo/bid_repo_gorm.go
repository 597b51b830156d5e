package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bids-api/internal/domain"
)

type BidRepo struct{ db *gorm.DB }

func NewBidRepo(db *gorm.DB) *BidRepo { return &BidRepo{db: db} }

func (r *BidRepo) Create(ctx context.Context, b *domain.Bid) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BidRepo) FindByID(ctx context.Context, id string) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *BidRepo) List(ctx context.Context, offset, limit int) ([]domain.Bid, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Bid{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bids []domain.Bid
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bids).Error; err != nil {
		return nil, 0, err
	}
	return bids, total, nil
}

func (r *BidRepo) Update(ctx context.Context, b *domain.Bid) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BidRepo) SoftDelete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Bid{})
	return res.RowsAffected, res.Error
}
