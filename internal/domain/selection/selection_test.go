package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChooseWithoutReplacement(t *testing.T) {
	testCases := []struct {
		name      string
		pool      []int64
		k         int
		wantCount int
	}{
		{name: "empty pool", pool: nil, k: 3, wantCount: 0},
		{name: "zero k", pool: []int64{1, 2}, k: 0, wantCount: 0},
		{name: "k larger than pool", pool: []int64{7}, k: 2, wantCount: 1},
		{name: "k smaller than pool", pool: []int64{1, 2, 3, 4, 5}, k: 3, wantCount: 3},
		{name: "duplicated entries", pool: []int64{1, 1, 1, 2}, k: 5, wantCount: 2},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				got := ChooseWithoutReplacement(tt.pool, tt.k)
				require.Len(t, got, tt.wantCount)

				seen := map[int64]bool{}
				for _, id := range got {
					require.False(t, seen[id], "duplicated winner %d", id)
					require.Contains(t, tt.pool, id)
					seen[id] = true
				}
			}
		})
	}
}

func TestChooseWithoutReplacement_DoesNotMutatePool(t *testing.T) {
	pool := []int64{1, 2, 3, 4, 5, 6}
	ChooseWithoutReplacement(pool, 3)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, pool)
}

func TestChooseWithoutReplacement_Weighted(t *testing.T) {
	// User 1 holds 9 tickets out of 10.
	pool := []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 2}

	wins := map[int64]int{}
	for i := 0; i < 2000; i++ {
		wins[ChooseWithoutReplacement(pool, 1)[0]]++
	}

	require.Greater(t, wins[1], wins[2]*3)
	require.Greater(t, wins[2], 0)
}
