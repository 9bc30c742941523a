package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandIntn(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := RandIntn(4)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 4)
		seen[v] = true
	}

	require.Len(t, seen, 4)
}

func TestEqualString(t *testing.T) {
	require.True(t, EqualString("secret", "secret"))
	require.False(t, EqualString("secret", "secreT"))
	require.False(t, EqualString("", "secret"))
}
