// Package labelmap packs a cluster assignment into the fewest bits per label.
package labelmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/yyyoichi/bitstream-go"
)

var ErrCorrupt = errors.New("corrupt label map")

const headerSize = 12

// Map is a bit-packed assignment. Labels are written most significant bit
// first, Width bits each.
type Map struct {
	K     int
	Count int
	Width int
	Data  []uint64
}

// BitsPerLabel returns the number of bits needed to store a label in 0..k-1.
func BitsPerLabel(k int) int {
	if k <= 1 {
		return 1
	}
	return bits.Len(uint(k - 1))
}

func Encode(assignment []int, k int) Map {
	width := BitsPerLabel(k)
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, label := range assignment {
		for b := width - 1; b >= 0; b-- {
			w.WriteBool(label>>b&1 == 1)
		}
	}
	return Map{K: k, Count: len(assignment), Width: width, Data: w.Data()}
}

func (m Map) Decode() ([]int, error) {
	if m.Count < 0 || m.Width < 1 || uint64(m.Count)*uint64(m.Width) > uint64(len(m.Data))*64 {
		return nil, fmt.Errorf("%w: %d words cannot hold %d labels of %d bits", ErrCorrupt, len(m.Data), m.Count, m.Width)
	}
	labels := make([]int, m.Count)
	if m.Count == 0 {
		return labels, nil
	}
	r := bitstream.NewBitReader(m.Data, 0, 0)
	r.SetBits(m.Count * m.Width)
	for i := range labels {
		var v int
		for b := range m.Width {
			bit, _ := r.ReadBitAt(i*m.Width + b)
			v <<= 1
			if bit {
				v |= 1
			}
		}
		if v >= m.K {
			return nil, fmt.Errorf("%w: label %d at %d exceeds k=%d", ErrCorrupt, v, i, m.K)
		}
		labels[i] = v
	}
	return labels, nil
}

// MarshalBinary writes a little-endian header (k, count, width as uint32)
// followed by the packed words.
func (m Map) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize, headerSize+len(m.Data)*8)
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.K))
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.Count))
	binary.LittleEndian.PutUint32(buf[8:], uint32(m.Width))
	for _, word := range m.Data {
		buf = binary.LittleEndian.AppendUint64(buf, word)
	}
	return buf, nil
}

func (m *Map) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || (len(data)-headerSize)%8 != 0 {
		return fmt.Errorf("%w: length %d", ErrCorrupt, len(data))
	}
	k := int(binary.LittleEndian.Uint32(data[0:]))
	count := int(binary.LittleEndian.Uint32(data[4:]))
	width := int(binary.LittleEndian.Uint32(data[8:]))
	if k < 1 || width != BitsPerLabel(k) {
		return fmt.Errorf("%w: k=%d width=%d", ErrCorrupt, k, width)
	}
	nwords := (len(data) - headerSize) / 8
	if uint64(count)*uint64(width) > uint64(nwords)*64 {
		return fmt.Errorf("%w: %d labels of %d bits in %d words", ErrCorrupt, count, width, nwords)
	}
	words := make([]uint64, nwords)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[headerSize+i*8:])
	}
	*m = Map{K: k, Count: count, Width: width, Data: words}
	return nil
}
