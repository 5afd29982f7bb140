// Package colorsample splits an image into K regions that are coherent both
// in position and in color, by running Lloyd's algorithm over pixels placed
// in a joint (x, y, color) space.
package colorsample

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"

	"github.com/yyyoichi/colorsample/internal/colorspace"
	"github.com/yyyoichi/colorsample/internal/kmeans"
	"github.com/yyyoichi/colorsample/internal/raster"
)

var (
	ErrInvalidClusterCount = kmeans.ErrInvalidClusterCount
	ErrInvalidScale        = kmeans.ErrInvalidScale
	ErrEmptyCluster        = kmeans.ErrEmptyCluster
	ErrEmptyImage          = errors.New("image has no pixels")
	ErrUnknownColorSpace   = errors.New("unknown color space")
)

// Iteration is passed to the hook registered with WithIterationHook.
type Iteration = kmeans.Iteration

// Quantize clusters src into k regions with the specified options.
// This is a convenience function that creates a Quantizer and calls its Quantize method.
func Quantize(ctx context.Context, src image.Image, k int, opts ...Option) (*Result, error) {
	q, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return q.Quantize(ctx, src, k)
}

type Quantizer struct {
	scale         float64
	space         ColorSpace
	maxIterations int
	seed          *int64
	rand          *rand.Rand
	workers       int
	logger        *slog.Logger
	onIteration   func(Iteration)
}

// New initializes a quantizer. Without options it works in RGB, derives the
// scale from the image size and seeds from the clock.
func New(opts ...Option) (*Quantizer, error) {
	q := new(Quantizer)
	if err := q.init(opts...); err != nil {
		return nil, err
	}
	return q, nil
}

// Quantize clusters src into k regions.
//
// Process:
//  1. Encodes every pixel into the configured color space.
//  2. Picks k distinct pixels at random as initial centroids.
//  3. Alternates nearest-centroid assignment and centroid recomputation
//     until no pixel changes cluster or the iteration budget is spent.
//
// Returns ErrInvalidClusterCount unless 1 <= k <= number of pixels.
func (q *Quantizer) Quantize(ctx context.Context, src image.Image, k int) (*Result, error) {
	return q.run(ctx, raster.NewSource(src, q.space), k)
}

func (q *Quantizer) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(q); err != nil {
			return err
		}
	}
	if q.space == nil {
		q.space = RGB
	}
	if q.maxIterations == 0 {
		q.maxIterations = kmeans.DefaultMaxIterations
	}
	if q.logger == nil {
		q.logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

func (q *Quantizer) run(ctx context.Context, src *raster.Source, k int) (*Result, error) {
	if src.Area() == 0 {
		return nil, ErrEmptyImage
	}
	scale := q.scale
	if scale == 0 {
		scale = DefaultScale(src.Width(), src.Height(), q.space)
	}

	rd := q.rand
	if q.seed != nil {
		rd = rand.New(rand.NewSource(*q.seed))
	}
	logger := q.logger.With("space", q.space.Name())
	res, err := kmeans.Cluster(ctx, src.Pixels(), kmeans.Config{
		K:             k,
		Scale:         scale,
		MaxIterations: q.maxIterations,
		Rand:          rd,
		Workers:       q.workers,
		Logger:        logger,
		OnIteration:   q.onIteration,
	})
	if err != nil {
		return nil, fmt.Errorf("quantize %dx%d image: %w", src.Width(), src.Height(), err)
	}
	logger.InfoContext(ctx, "quantized",
		"k", k, "sse", res.SSE, "iterations", res.Iterations, "converged", res.Converged)
	return newResult(src, k, scale, res), nil
}

// DefaultScale returns the color weight that makes the full black-to-white
// color distance as large as the squared longer side of a width x height
// image, so position and color contribute on a comparable footing.
func DefaultScale(width, height int, space ColorSpace) float64 {
	d := kmeans.ColorDistanceSq(colorspace.Black(space), colorspace.White(space))
	if d == 0 {
		return 1
	}
	m := float64(max(width, height))
	return m * m / d
}

// Batch clusters a single image several times, for example with different
// K, reusing the decoded pixels of each color space.
type Batch struct {
	cache *raster.Cache
}

func NewBatch(src image.Image) *Batch {
	return &Batch{cache: raster.NewCache(src)}
}

// Quantize clusters the cached image into k regions with the specified options.
func (b *Batch) Quantize(ctx context.Context, k int, opts ...Option) (*Result, error) {
	q, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return q.run(ctx, b.cache.Source(q.space), k)
}
