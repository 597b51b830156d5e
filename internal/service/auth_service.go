package service

import (
	"context"

	"go.uber.org/zap"

	"bids-api/internal/apperr"
	"bids-api/internal/core/auth"
	"bids-api/internal/domain"
	"bids-api/pkg/utils"
)

// AuthService 会话生命周期：signup / signin / signout / refresh。
// refresh token 只存服务端（jwts 表，每用户一行），客户端只拿 access token。
type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenRepository
	jwter  *auth.JWTer
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, jwter *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwter: jwter, log: log}
}

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Gender    string
	IsAdmin   bool
	Avatar    *string // 已落盘的头像路径，可空
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	// 查重大小写敏感，软删用户不占用用户名/邮箱
	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.BadRequest("User already exists")
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, &domain.User{
		ID:        utils.NewID(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    in.Gender,
		IsAdmin:   in.IsAdmin,
		Avatar:    in.Avatar,
	})
}

// Signin 按 username 或 email 查找。成功后 access token 返回给客户端，
// refresh token 覆盖写入该用户的唯一一行。
func (s *AuthService) Signin(ctx context.Context, username, email, password string) (string, error) {
	var (
		u   *domain.User
		err error
	)
	if username != "" {
		u, err = s.users.FindByUsername(ctx, username)
	} else {
		u, err = s.users.FindByEmail(ctx, email)
	}
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.NotFound("User not found!")
	}
	if !utils.CheckPassword(password, u.Password) {
		return "", apperr.Unauthorized("Wrong password!")
	}

	access, err := s.jwter.IssueAccess(u.ID)
	if err != nil {
		return "", err
	}
	refresh, err := s.jwter.IssueRefresh(u.ID)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Upsert(ctx, u.ID, refresh); err != nil {
		return "", err
	}
	return access, nil
}

// Signout 删除 refresh 行即吊销。重复调用同样返回成功（幂等删除）。
func (s *AuthService) Signout(ctx context.Context, userID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found!")
	}
	return s.tokens.DeleteByUserID(ctx, u.ID)
}

// Refresh 用 userId 找到服务端存的 refresh token 并验签；过期或被篡改则
// 顺手删掉失效行。成功只轮换 access token，refresh 行保持不动。
func (s *AuthService) Refresh(ctx context.Context, userID string) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.NotFound("User not found!")
	}

	row, err := s.tokens.FindByUserID(ctx, u.ID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", apperr.Unauthorized("Refresh token not found! User is not signed in.")
	}

	if _, err := s.jwter.Verify(row.Token); err != nil {
		if delErr := s.tokens.DeleteByUserID(ctx, u.ID); delErr != nil {
			s.log.Warn("delete stale refresh token", zap.Error(delErr))
		}
		return "", apperr.Unauthorized("Refresh token is not valid! User is not signed in.")
	}

	return s.jwter.IssueAccess(u.ID)
}
