package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	h, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", h)

	t.Run("正确密码校验通过", func(t *testing.T) {
		require.True(t, CheckPassword("s3cret!", h))
	})
	t.Run("错误密码校验失败", func(t *testing.T) {
		require.False(t, CheckPassword("wrong", h))
	})
	t.Run("同一密码两次哈希不同", func(t *testing.T) {
		h2, err := HashPassword("s3cret!")
		require.NoError(t, err)
		require.NotEqual(t, h, h2)
	})
}
