package service

import (
	"context"
	"os"

	"go.uber.org/zap"

	"bids-api/internal/apperr"
	"bids-api/internal/domain"
	"bids-api/pkg/utils"
)

type UserService struct {
	users  domain.UserRepository
	tokens domain.TokenRepository
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens domain.TokenRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found!")
	}
	return u, nil
}

type ProfileUpdate struct {
	Username  string
	FirstName string
	LastName  string
	Gender    string
	IsAdmin   *bool
	Avatar    *string // 新头像路径，nil 表示不换
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found!")
	}

	oldAvatar := u.Avatar
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.Gender != "" {
		u.Gender = in.Gender
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}
	if in.Avatar != nil {
		u.Avatar = in.Avatar
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	// 换头像后清理旧文件，失败只记日志
	if in.Avatar != nil && oldAvatar != nil {
		if err := os.Remove(*oldAvatar); err != nil {
			s.log.Error("remove old avatar", zap.String("path", *oldAvatar), zap.Error(err))
		}
	}
	return u, nil
}

// Delete 软删用户并吊销其会话
func (s *UserService) Delete(ctx context.Context, userID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found!")
	}
	if err := s.users.SoftDelete(ctx, u.ID); err != nil {
		return err
	}
	return s.tokens.DeleteByUserID(ctx, u.ID)
}

// Restore 凭密码恢复软删账号
func (s *UserService) Restore(ctx context.Context, username, email, password string) error {
	u, err := s.users.FindDeleted(ctx, username, email)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found!")
	}
	if !utils.CheckPassword(password, u.Password) {
		return apperr.Unauthorized("Password is not valid!")
	}
	return s.users.Restore(ctx, u.ID)
}
