package labelmap

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsPerLabel(t *testing.T) {
	tests := []struct{ k, want int }{
		{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {256, 8}, {257, 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BitsPerLabel(tt.k), "k=%d", tt.k)
	}
}

func TestEncodeDecode(t *testing.T) {
	rd := rand.New(rand.NewSource(1))
	for _, k := range []int{1, 2, 3, 7, 16, 100} {
		for _, n := range []int{0, 1, 63, 64, 65, 1000} {
			assignment := make([]int, n)
			for i := range assignment {
				assignment[i] = rd.Intn(k)
			}
			m := Encode(assignment, k)
			assert.Equal(t, BitsPerLabel(k), m.Width)

			got, err := m.Decode()
			require.NoError(t, err, "k=%d n=%d", k, n)
			assert.Equal(t, assignment, got, "k=%d n=%d", k, n)

			data, err := m.MarshalBinary()
			require.NoError(t, err)
			var back Map
			require.NoError(t, back.UnmarshalBinary(data))
			got, err = back.Decode()
			require.NoError(t, err, "k=%d n=%d", k, n)
			assert.Equal(t, assignment, got, "k=%d n=%d", k, n)
		}
	}
}

func TestDecode_Corrupt(t *testing.T) {
	// k=3 needs 2 bits, so the label 3 can be stored but is out of range.
	m := Encode([]int{0, 3, 1}, 3)
	_, err := m.Decode()
	assert.ErrorIs(t, err, ErrCorrupt)

	m = Encode([]int{1, 2}, 3)
	m.Count = 100
	_, err = m.Decode()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestUnmarshalBinary_Corrupt(t *testing.T) {
	var m Map
	assert.ErrorIs(t, m.UnmarshalBinary(nil), ErrCorrupt)
	assert.ErrorIs(t, m.UnmarshalBinary(make([]byte, 13)), ErrCorrupt)

	data, err := Encode([]int{0, 1}, 2).MarshalBinary()
	require.NoError(t, err)
	data[8] = 5 // width does not match k
	assert.ErrorIs(t, m.UnmarshalBinary(data), ErrCorrupt)

	// A count far beyond the payload must fail before anything is allocated.
	data, err = Encode([]int{0, 1, 1}, 2).MarshalBinary()
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:], math.MaxUint32)
	assert.ErrorIs(t, m.UnmarshalBinary(data), ErrCorrupt)

	// 64 one-bit labels fit in one word, 65 do not.
	binary.LittleEndian.PutUint32(data[4:], 64)
	require.NoError(t, m.UnmarshalBinary(data))
	binary.LittleEndian.PutUint32(data[4:], 65)
	assert.ErrorIs(t, m.UnmarshalBinary(data), ErrCorrupt)
}

func TestDecode_HugeCount(t *testing.T) {
	m := Map{K: 2, Count: math.MaxUint32, Width: 1, Data: []uint64{0}}
	_, err := m.Decode()
	assert.ErrorIs(t, err, ErrCorrupt)
}
