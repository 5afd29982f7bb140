package raster

import (
	"image"
	"image/color"

	"github.com/yyyoichi/colorsample/internal/colorspace"
	"github.com/yyyoichi/colorsample/internal/kmeans"
)

// Source is a decoded image laid out for clustering: one kmeans.Pixel per
// coordinate in row-major order, with coordinates relative to the image
// origin, plus the original colors for writing masks.
type Source struct {
	bounds        image.Rectangle
	width, height int
	area          int
	space         colorspace.Model

	original []color.NRGBA
	pixels   []kmeans.Pixel
}

func NewSource(src image.Image, space colorspace.Model) *Source {
	s := &Source{space: space}
	s.bounds = src.Bounds()
	s.width, s.height = s.bounds.Dx(), s.bounds.Dy()
	s.area = s.width * s.height
	s.original = make([]color.NRGBA, s.area)
	s.pixels = make([]kmeans.Pixel, s.area)

	colors := make([]color.Color, s.area)
	idx := 0
	for y := range s.height {
		for x := range s.width {
			c := src.At(s.bounds.Min.X+x, s.bounds.Min.Y+y)
			colors[idx] = c
			s.original[idx] = color.NRGBAModel.Convert(c).(color.NRGBA)
			s.pixels[idx].X, s.pixels[idx].Y = x, y
			idx++
		}
	}
	encoded := make([][3]float64, s.area)
	colorspace.EncodeBatch(space, colors, encoded)
	for i := range s.pixels {
		s.pixels[i].Color = encoded[i]
	}
	return s
}

// Pixels returns the feature pixels. Callers must not modify them.
func (s *Source) Pixels() []kmeans.Pixel { return s.pixels }

func (s *Source) Bounds() image.Rectangle { return s.bounds }

func (s *Source) Width() int { return s.width }

func (s *Source) Height() int { return s.height }

func (s *Source) Area() int { return s.area }

func (s *Source) Space() colorspace.Model { return s.space }

// Mask returns a transparent canvas holding the original colors of the pixels
// assigned to cluster.
func (s *Source) Mask(assignment []int, cluster int) *image.NRGBA {
	dist := image.NewNRGBA(s.bounds)
	for i, p := range s.pixels {
		if assignment[i] != cluster {
			continue
		}
		dist.SetNRGBA(s.bounds.Min.X+p.X, s.bounds.Min.Y+p.Y, s.original[i])
	}
	return dist
}

// Palette returns a canvas where every pixel carries the decoded color of its
// cluster's centroid.
func (s *Source) Palette(assignment []int, centroids []kmeans.Centroid) *image.NRGBA {
	colors := make([]color.NRGBA, len(centroids))
	for i, c := range centroids {
		colors[i] = s.space.Decode(c.Color)
	}
	dist := image.NewNRGBA(s.bounds)
	for i, p := range s.pixels {
		dist.SetNRGBA(s.bounds.Min.X+p.X, s.bounds.Min.Y+p.Y, colors[assignment[i]])
	}
	return dist
}
