package colorsample

import (
	"fmt"
	"image"
	"image/color"

	"github.com/yyyoichi/colorsample/internal/kmeans"
	"github.com/yyyoichi/colorsample/internal/labelmap"
	"github.com/yyyoichi/colorsample/internal/raster"
)

// Centroid is the representative point of a cluster. X and Y are relative to
// the image bounds; Color is in the channels of the color space used.
type Centroid struct {
	X, Y  float64
	Color [3]float64
}

type Result struct {
	K int
	// Assignment holds the cluster of every pixel in row-major order.
	Assignment []int
	Centroids  []Centroid
	SSE        float64
	Iterations int
	Converged  bool
	// EmptyClusters counts how often a cluster received no pixels and kept
	// its previous centroid.
	EmptyClusters int
	Scale         float64

	source *raster.Source
	inner  []kmeans.Centroid
}

func newResult(src *raster.Source, k int, scale float64, res *kmeans.Result) *Result {
	r := &Result{
		K:             k,
		Assignment:    res.Assignment,
		Centroids:     make([]Centroid, len(res.Centroids)),
		SSE:           res.SSE,
		Iterations:    res.Iterations,
		Converged:     res.Converged,
		EmptyClusters: res.EmptyClusters,
		Scale:         scale,
		source:        src,
		inner:         res.Centroids,
	}
	for i, c := range res.Centroids {
		r.Centroids[i] = Centroid{X: c.X, Y: c.Y, Color: c.Color}
	}
	return r
}

func (r *Result) Bounds() image.Rectangle { return r.source.Bounds() }

// ClusterImage returns a transparent image of the source size holding the
// original colors of the pixels in cluster i, or nil if i is out of range.
func (r *Result) ClusterImage(i int) *image.NRGBA {
	if i < 0 || i >= r.K {
		return nil
	}
	return r.source.Mask(r.Assignment, i)
}

// PaletteImage returns the source image with every pixel replaced by the
// color of its centroid.
func (r *Result) PaletteImage() *image.NRGBA {
	return r.source.Palette(r.Assignment, r.inner)
}

// CentroidColor decodes the color of centroid i for display.
func (r *Result) CentroidColor(i int) color.NRGBA {
	return r.source.Space().Decode(r.Centroids[i].Color)
}

// Sizes returns the number of pixels in each cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, r.K)
	for _, c := range r.Assignment {
		sizes[c]++
	}
	return sizes
}

// MarshalLabels encodes the assignment with the fewest bits per label.
func (r *Result) MarshalLabels() ([]byte, error) {
	return labelmap.Encode(r.Assignment, r.K).MarshalBinary()
}

// UnmarshalLabels decodes data written by Result.MarshalLabels.
func UnmarshalLabels(data []byte) (assignment []int, k int, err error) {
	var m labelmap.Map
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, 0, err
	}
	assignment, err = m.Decode()
	if err != nil {
		return nil, 0, err
	}
	return assignment, m.K, nil
}

// ClusterFileName is the file name the CLI writes ClusterImage(i) to.
// Clusters are numbered from 1.
func ClusterFileName(i, k int) string {
	return fmt.Sprintf("cluster%dof%d.png", i+1, k)
}

func PaletteFileName(k int) string {
	return fmt.Sprintf("%dclusterpalette.png", k)
}
