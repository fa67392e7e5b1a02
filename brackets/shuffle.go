package brackets

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of items using Fisher–Yates.
// The input slice is never modified. A nil rng falls back to the global source.
func Shuffle[T any](items []T, rng *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)

	for i := len(out) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
