package shuffle

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle(t *testing.T) {
	for i := range 100 {
		l := rand.Intn(100_000) + 1
		data := make([]int, l)
		for i := range data {
			data[i] = i
		}
		seed := int64(i)
		Shuffle(data, seed)
		Ishuffle(data, seed)
		for i := range data {
			require.Equal(t, i, data[i], "mismatch at index %d", i)
		}
	}
}

func TestSample(t *testing.T) {
	data := []string{"a", "b", "c", "d", "e"}
	orig := slices.Clone(data)

	got := Sample(data, 3, 7)
	assert.Len(t, got, 3)
	assert.Equal(t, orig, data)
	assert.Equal(t, got, Sample(data, 3, 7))
	for _, s := range got {
		assert.Contains(t, data, s)
	}

	all := Sample(data, 0, 7)
	assert.ElementsMatch(t, data, all)
	assert.Equal(t, got, all[:3])
}
