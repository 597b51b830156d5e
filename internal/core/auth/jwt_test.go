package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWTer() *JWTer {
	return &JWTer{
		Secret:     []byte("unit-test-secret"),
		Issuer:     "bids-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestJWTer(t *testing.T) {
	j := newTestJWTer()

	t.Run("签发后可验签且带回userId", func(t *testing.T) {
		tok, err := j.IssueAccess("user-1")
		require.NoError(t, err)

		claims, err := j.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID)
		require.Equal(t, "bids-api", claims.Issuer)
	})

	t.Run("密钥不同验签失败", func(t *testing.T) {
		other := newTestJWTer()
		other.Secret = []byte("another-secret")
		tok, err := other.IssueRefresh("user-1")
		require.NoError(t, err)

		_, err = j.Verify(tok)
		require.Error(t, err)
	})

	t.Run("过期token验签失败", func(t *testing.T) {
		expired := newTestJWTer()
		expired.AccessTTL = -2 * time.Minute // 超出 60s leeway
		tok, err := expired.IssueAccess("user-1")
		require.NoError(t, err)

		_, err = j.Verify(tok)
		require.Error(t, err)
	})

	t.Run("Decode不验签也能取userId", func(t *testing.T) {
		other := newTestJWTer()
		other.Secret = []byte("whatever")
		other.AccessTTL = -2 * time.Minute
		tok, err := other.IssueAccess("user-2")
		require.NoError(t, err)

		// 过期且密钥不对，Decode 依然取得 payload
		claims, err := j.Decode(tok)
		require.NoError(t, err)
		require.Equal(t, "user-2", claims.UserID)
	})

	t.Run("Decode拒绝非JWT字符串", func(t *testing.T) {
		_, err := j.Decode("not-a-jwt")
		require.Error(t, err)
	})
}
