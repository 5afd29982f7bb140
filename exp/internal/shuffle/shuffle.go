// Package shuffle orders sweep inputs reproducibly.
package shuffle

import (
	"math/rand"
	"slices"
)

func Shuffle[T any](data []T, seed int64) {
	rd := rand.New(rand.NewSource(seed))
	rd.Shuffle(len(data), func(i, j int) {
		data[i], data[j] = data[j], data[i]
	})
}

// Ishuffle undoes Shuffle with the same seed.
func Ishuffle[T any](data []T, seed int64) {
	index := make([]int, len(data))
	for i := range index {
		index[i] = i
	}
	Shuffle(index, seed)

	cp := slices.Clone(data)
	for i, x := range index {
		data[x] = cp[i]
	}
}

// Sample returns n elements of data in shuffled order, leaving data as it
// was. n <= 0 or n > len(data) returns all of them.
func Sample[T any](data []T, n int, seed int64) []T {
	out := slices.Clone(data)
	Shuffle(out, seed)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
