package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration // 短时效，随每个请求携带
	RefreshTTL time.Duration // 长时效，只存服务端
}

func (j *JWTer) IssueAccess(userID string) (string, error) {
	return j.issue(userID, j.AccessTTL)
}

func (j *JWTer) IssueRefresh(userID string) (string, error) {
	return j.issue(userID, j.RefreshTTL)
}

func (j *JWTer) issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Verify 校验签名与时效
func (j *JWTer) Verify(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Decode 只解 payload，不验签。signout/refresh 沿用旧 API 的行为：
// access token 仅用来找回 userId，真正的授权依据是服务端存的 refresh token。
func (j *JWTer) Decode(tokenStr string) (*Claims, error) {
	var claims Claims
	p := jwt.NewParser()
	if _, _, err := p.ParseUnverified(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("userId claim missing")
	}
	return &claims, nil
}
