package colorsample

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
)

type Option func(*Quantizer) error

// WithScale sets the divisor applied to the color distance before it is added
// to the squared spatial distance. Smaller values weight color more.
// The default is DefaultScale of the image.
func WithScale(scale float64) Option {
	return func(q *Quantizer) error {
		if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
			return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
		}
		q.scale = scale
		return nil
	}
}

// WithColorSpace selects the channels pixels are clustered in.
func WithColorSpace(space ColorSpace) Option {
	return func(q *Quantizer) error {
		if space == nil {
			return fmt.Errorf("%w: nil", ErrUnknownColorSpace)
		}
		q.space = space
		return nil
	}
}

// WithMaxIterations bounds the assign/recompute passes. When the budget is
// spent the best state seen is returned with Converged set to false.
func WithMaxIterations(n int) Option {
	return func(q *Quantizer) error {
		if n < 1 {
			return fmt.Errorf("max iterations must be positive: %d", n)
		}
		q.maxIterations = n
		return nil
	}
}

// WithSeed makes the choice of initial centroids reproducible. Every call to
// Quantize starts from the same seed.
func WithSeed(seed int64) Option {
	return func(q *Quantizer) error {
		q.seed = &seed
		q.rand = nil
		return nil
	}
}

// WithRand draws initial centroids from rd. rd is not safe for concurrent
// use, so a Quantizer built with it must not run concurrently.
func WithRand(rd *rand.Rand) Option {
	return func(q *Quantizer) error {
		q.rand = rd
		q.seed = nil
		return nil
	}
}

// WithWorkers sets how many goroutines assign pixels to centroids.
// Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(q *Quantizer) error {
		q.workers = n
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(q *Quantizer) error {
		q.logger = logger
		return nil
	}
}

// WithIterationHook registers fn to observe every assign/recompute pass.
func WithIterationHook(fn func(Iteration)) Option {
	return func(q *Quantizer) error {
		q.onIteration = fn
		return nil
	}
}
