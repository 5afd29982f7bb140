package kmeans

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorDistanceSq(t *testing.T) {
	tests := []struct {
		name   string
		c1, c2 Color
		want   float64
	}{
		{"identical", Color{12, 34, 56}, Color{12, 34, 56}, 0},
		{"squared channels", Color{1, 2, 3}, Color{0, 0, 0}, 1 + 16 + 81},
		{"black to white", Color{0, 0, 0}, Color{255, 255, 255}, 3 * 65025 * 65025},
		{"not euclidean", Color{2, 0, 0}, Color{1, 0, 0}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorDistanceSq(tt.c1, tt.c2))
			assert.Equal(t, tt.want, ColorDistanceSq(tt.c2, tt.c1))
		})
	}
}

func TestDistanceSq(t *testing.T) {
	a := Pixel{X: 0, Y: 0, Color: Color{0, 0, 0}}
	b := Pixel{X: 3, Y: 4, Color: Color{1, 0, 0}}
	assert.Equal(t, 25.0+1.0/2, PixelDistanceSq(a, b.Centroid(), 2))

	rd := rand.New(rand.NewSource(7))
	randomPixel := func() Pixel {
		return Pixel{
			X:     rd.Intn(64),
			Y:     rd.Intn(64),
			Color: Color{float64(rd.Intn(256)), float64(rd.Intn(256)), float64(rd.Intn(256))},
		}
	}
	for range 200 {
		p, q := randomPixel(), randomPixel()
		scale := rd.Float64()*1000 + 1e-3

		assert.Zero(t, PixelDistanceSq(p, p.Centroid(), scale))
		assert.Equal(t, PixelDistanceSq(p, q.Centroid(), scale), PixelDistanceSq(q, p.Centroid(), scale))
		if p != q {
			assert.Greater(t, PixelDistanceSq(p, q.Centroid(), scale), 0.0)
		}
	}
}
