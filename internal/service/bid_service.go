package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bids-api/internal/apperr"
	"bids-api/internal/core/cache"
	"bids-api/internal/core/mail"
	"bids-api/internal/domain"
	"bids-api/pkg/utils"
)

const (
	bidListTTL = 30 * time.Second
	bidOneTTL  = time.Minute
)

type BidService struct {
	bids   domain.BidRepository
	users  domain.UserRepository
	cache  *cache.Cache // nil 时直接回源
	mailer mail.Mailer
	log    *zap.Logger
}

func NewBidService(bids domain.BidRepository, users domain.UserRepository, c *cache.Cache, m mail.Mailer, log *zap.Logger) *BidService {
	if m == nil {
		m = mail.Noop{}
	}
	return &BidService{bids: bids, users: users, cache: c, mailer: m, log: log}
}

type BidPage struct {
	Bids   []domain.Bid `json:"bids"`
	Count  int64        `json:"count"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

func listKey(offset, limit int) string { return fmt.Sprintf("bids:list:%d:%d", offset, limit) }
func oneKey(id string) string          { return "bids:one:" + id }

func (s *BidService) List(ctx context.Context, offset, limit int) (*BidPage, error) {
	return cache.GetOrLoadJSON[BidPage](s.cache, ctx, listKey(offset, limit), bidListTTL,
		func(ctx context.Context) (*BidPage, error) {
			bids, total, err := s.bids.List(ctx, offset, limit)
			if err != nil {
				return nil, err
			}
			return &BidPage{Bids: bids, Count: total, Limit: limit, Offset: offset}, nil
		})
}

func (s *BidService) Get(ctx context.Context, id string) (*domain.Bid, error) {
	b, err := cache.GetOrLoadJSON[domain.Bid](s.cache, ctx, oneKey(id), bidOneTTL,
		func(ctx context.Context) (*domain.Bid, error) {
			b, err := s.bids.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if b == nil {
				return nil, apperr.NotFound("Bid not found!")
			}
			return b, nil
		})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BidService) Create(ctx context.Context, authorID, message string) (*domain.Bid, error) {
	b := &domain.Bid{
		ID:       utils.NewID(),
		Status:   domain.BidStatusPending,
		Message:  message,
		AuthorID: authorID,
	}
	if err := s.bids.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Resolve 仅管理员。写库成功即成功，通知邮件失败只记日志。
func (s *BidService) Resolve(ctx context.Context, adminID, bidID, status, comment string) error {
	if status != domain.BidStatusResolved && status != domain.BidStatusRejected {
		return apperr.BadRequest("Status must be resolved or rejected!")
	}
	admin, err := s.requireAdmin(ctx, adminID, "Only admins can resolve requests!")
	if err != nil {
		return err
	}

	b, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return err
	}
	if b == nil {
		return apperr.NotFound("Bid not found!")
	}

	b.Status = status
	b.ResolvedBy = &admin.ID
	if comment != "" {
		b.Comment = &comment
	}
	if err := s.bids.Update(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx, bidID)

	if author, err := s.users.FindByID(ctx, b.AuthorID); err == nil && author != nil {
		if err := s.mailer.SendBidResolved(author.Email, author.Username, b.ID, status, comment); err != nil {
			s.log.Error("send resolution mail", zap.String("bid", b.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *BidService) Delete(ctx context.Context, adminID, bidID string) error {
	if _, err := s.requireAdmin(ctx, adminID, "Only admins can delete requests!"); err != nil {
		return err
	}
	rows, err := s.bids.SoftDelete(ctx, bidID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("Bid not found!")
	}
	s.invalidate(ctx, bidID)
	return nil
}

func (s *BidService) requireAdmin(ctx context.Context, userID, denyMsg string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found!")
	}
	if !u.IsAdmin {
		return nil, apperr.Forbidden(denyMsg)
	}
	return u, nil
}

// 单条缓存写后立即失效；列表页靠短 TTL 自然过期（最多 30s 旧数据）
func (s *BidService) invalidate(ctx context.Context, bidID string) {
	s.cache.Invalidate(ctx, oneKey(bidID))
}
