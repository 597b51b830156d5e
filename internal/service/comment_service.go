package service

import (
	"context"

	"bids-api/internal/apperr"
	"bids-api/internal/domain"
	"bids-api/pkg/utils"
)

type CommentService struct {
	comments domain.CommentRepository
	bids     domain.BidRepository
	users    domain.UserRepository
}

func NewCommentService(comments domain.CommentRepository, bids domain.BidRepository, users domain.UserRepository) *CommentService {
	return &CommentService{comments: comments, bids: bids, users: users}
}

type CommentPage struct {
	Comments []domain.Comment `json:"comments"`
	Count    int64            `json:"count"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func (s *CommentService) List(ctx context.Context, bidID string, offset, limit int) (*CommentPage, error) {
	cs, total, err := s.comments.ListByBid(ctx, bidID, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, apperr.NotFound("Comments not found!")
	}
	return &CommentPage{Comments: cs, Count: total, Limit: limit, Offset: offset}, nil
}

func (s *CommentService) Create(ctx context.Context, authorID, bidID, message string) (*domain.Comment, error) {
	if err := s.checkUserAndBid(ctx, authorID, bidID); err != nil {
		return nil, err
	}
	c := &domain.Comment{
		ID:       utils.NewID(),
		Message:  message,
		AuthorID: authorID,
		BidID:    bidID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Edit 三段存在性检查后按 (id, authorId, bidId) 限定更新；
// 条件不满足时不报错也不落库（与旧 API 行为一致）
func (s *CommentService) Edit(ctx context.Context, authorID, bidID, commentID, message string) error {
	if err := s.checkCommentChain(ctx, authorID, bidID, commentID); err != nil {
		return err
	}
	_, err := s.comments.UpdateScoped(ctx, commentID, authorID, bidID, message)
	return err
}

func (s *CommentService) Delete(ctx context.Context, authorID, bidID, commentID string) error {
	if err := s.checkCommentChain(ctx, authorID, bidID, commentID); err != nil {
		return err
	}
	_, err := s.comments.DeleteScoped(ctx, commentID, authorID, bidID)
	return err
}

func (s *CommentService) checkUserAndBid(ctx context.Context, userID, bidID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found!")
	}
	b, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return err
	}
	if b == nil {
		return apperr.NotFound("Bid not found!")
	}
	return nil
}

func (s *CommentService) checkCommentChain(ctx context.Context, userID, bidID, commentID string) error {
	if err := s.checkUserAndBid(ctx, userID, bidID); err != nil {
		return err
	}
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("Comment not found!")
	}
	return nil
}
