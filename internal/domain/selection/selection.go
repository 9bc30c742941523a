// Package selection draws winners out of an entry pool.
package selection

import "github.com/questx-lab/taskmaster/pkg/crypto"

// Chooser picks at most k distinct users out of pool. A user appearing several
// times in pool has proportionally more chance to be picked.
type Chooser func(pool []int64, k int) []int64

// ChooseWithoutReplacement is the default Chooser. It runs a partial
// Fisher-Yates shuffle over a copy of pool and skips users already picked.
func ChooseWithoutReplacement(pool []int64, k int) []int64 {
	if k <= 0 || len(pool) == 0 {
		return []int64{}
	}

	if unique := countUnique(pool); k > unique {
		k = unique
	}

	candidates := make([]int64, len(pool))
	copy(candidates, pool)

	picked := make(map[int64]struct{}, k)
	result := make([]int64, 0, k)
	for i := 0; i < len(candidates) && len(result) < k; i++ {
		j := i + crypto.RandIntn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]

		if _, ok := picked[candidates[i]]; ok {
			continue
		}

		picked[candidates[i]] = struct{}{}
		result = append(result, candidates[i])
	}

	return result
}

func countUnique(pool []int64) int {
	seen := make(map[int64]struct{}, len(pool))
	for _, id := range pool {
		seen[id] = struct{}{}
	}

	return len(seen)
}
