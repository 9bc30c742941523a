package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	err := New(NotFound, "Not found raffle %d", 7)
	require.Equal(t, "Not found raffle 7", err.Error())
	require.True(t, Is(err, NotFound))
	require.False(t, Is(err, BadRequest))

	wrapped := fmt.Errorf("draw: %w", err)
	require.True(t, Is(wrapped, NotFound))
	require.False(t, Is(fmt.Errorf("plain"), NotFound))
}
