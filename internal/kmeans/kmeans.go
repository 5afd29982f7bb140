package kmeans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidClusterCount = errors.New("invalid cluster count")
	ErrInvalidScale        = errors.New("scale must be a positive finite number")
)

// DefaultMaxIterations bounds the number of assign/recompute passes when
// Config.MaxIterations is not set.
const DefaultMaxIterations = 300

// Config controls one clustering run.
type Config struct {
	K     int
	Scale float64

	// MaxIterations is the number of assign/recompute passes allowed before
	// the run gives up and returns the best state seen.
	MaxIterations int
	// Rand seeds the initial centroids. Tests pass a fixed seed.
	Rand *rand.Rand
	// Workers is the number of goroutines used by the assign phase.
	Workers int
	Logger  *slog.Logger
	// OnIteration, if set, is called after every recompute.
	OnIteration func(Iteration)
}

func (c *Config) setDefaults() {
	if c.MaxIterations < 1 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Iteration describes one completed assign/recompute pass.
type Iteration struct {
	Index   int
	Changed int   // pixels whose cluster differs from the previous pass
	Sizes   []int // pixels per cluster after the pass
	Empty   int   // clusters that kept their previous centroid
	SSE     float64
}

// Result is the outcome of Cluster. Assignment is index-aligned with the
// input pixels.
type Result struct {
	Assignment []int
	Centroids  []Centroid
	SSE        float64
	// Iterations counts the passes that changed the assignment.
	Iterations int
	Converged  bool
	// EmptyClusters counts every (iteration, cluster) pair that received no
	// pixels.
	EmptyClusters int
}

// Cluster partitions pixels into cfg.K clusters with Lloyd's algorithm in the
// joint position+color space. It stops when a full assign pass changes no
// pixel, or when the iteration budget is spent, in which case the state with
// the lowest SSE is returned with Converged set to false.
//
// ctx is checked once per iteration. pixels is not modified.
func Cluster(ctx context.Context, pixels []Pixel, cfg Config) (*Result, error) {
	if cfg.K < 1 || cfg.K > len(pixels) {
		return nil, fmt.Errorf("%w: k=%d, pixels=%d", ErrInvalidClusterCount, cfg.K, len(pixels))
	}
	if cfg.Scale <= 0 || math.IsInf(cfg.Scale, 0) || math.IsNaN(cfg.Scale) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, cfg.Scale)
	}
	cfg.setDefaults()
	return lloyd(ctx, pixels, seed(pixels, cfg.K, cfg.Rand), cfg)
}

// lloyd runs the assign/recompute loop from the given initial centroids,
// which it updates in place.
func lloyd(ctx context.Context, pixels []Pixel, centroids []Centroid, cfg Config) (*Result, error) {
	logger := cfg.Logger.With("k", len(centroids), "pixels", len(pixels))

	var (
		assignment = make([]int, len(pixels))
		next       = make([]int, len(pixels))
		best       *Result
		result     = &Result{}
	)
	for i := range assignment {
		assignment[i] = -1
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("clustering stopped after %d iterations: %w", result.Iterations, err)
		}
		changed := assign(pixels, centroids, cfg.Scale, assignment, next, cfg.Workers)
		if changed == 0 {
			result.Converged = true
			break
		}
		if result.Iterations == cfg.MaxIterations {
			break
		}
		assignment, next = next, assignment
		result.Iterations++

		sizes := recompute(pixels, assignment, centroids)
		it := Iteration{
			Index:   result.Iterations,
			Changed: changed,
			Sizes:   sizes,
			SSE:     SSE(pixels, assignment, centroids, cfg.Scale),
		}
		for i, n := range sizes {
			if n == 0 {
				it.Empty++
				logger.WarnContext(ctx, "empty cluster", "index", i, "iteration", it.Index)
			}
		}
		result.EmptyClusters += it.Empty
		result.SSE = it.SSE
		logger.DebugContext(ctx, "iteration", "index", it.Index, "changed", changed, "sse", it.SSE)
		if cfg.OnIteration != nil {
			cfg.OnIteration(it)
		}
		if best == nil || it.SSE < best.SSE {
			best = &Result{
				Assignment: slices.Clone(assignment),
				Centroids:  slices.Clone(centroids),
				SSE:        it.SSE,
			}
		}
	}

	if !result.Converged {
		logger.WarnContext(ctx, "did not converge", "iterations", result.Iterations, "sse", best.SSE)
		result.Assignment = best.Assignment
		result.Centroids = best.Centroids
		result.SSE = best.SSE
		return result, nil
	}
	logger.DebugContext(ctx, "converged", "iterations", result.Iterations, "sse", result.SSE)
	result.Assignment = assignment
	result.Centroids = centroids
	return result, nil
}

// Assign returns the index of the nearest centroid for every pixel. Ties go
// to the lowest index.
func Assign(pixels []Pixel, centroids []Centroid, scale float64) []int {
	next := make([]int, len(pixels))
	assign(pixels, centroids, scale, nil, next, 1)
	return next
}

// SSE returns the sum over all pixels of the squared distance to the centroid
// of the cluster the pixel is assigned to.
func SSE(pixels []Pixel, assignment []int, centroids []Centroid, scale float64) float64 {
	errs := make([]float64, len(pixels))
	for i, p := range pixels {
		errs[i] = PixelDistanceSq(p, centroids[assignment[i]], scale)
	}
	return floats.Sum(errs)
}

// seed picks k distinct pixels uniformly at random as initial centroids.
func seed(pixels []Pixel, k int, rd *rand.Rand) []Centroid {
	perm := rd.Perm(len(pixels))
	centroids := make([]Centroid, k)
	for i := range centroids {
		centroids[i] = pixels[perm[i]].Centroid()
	}
	return centroids
}

// assign writes the nearest centroid of each pixel into next and returns how
// many entries differ from prev. Pixels are split into contiguous chunks, one
// per worker; the function returns only after every chunk is done.
func assign(pixels []Pixel, centroids []Centroid, scale float64, prev, next []int, workers int) int {
	chunk := (len(pixels) + workers - 1) / workers
	changes := make([]int, workers)

	var g errgroup.Group
	for w := range workers {
		lo, hi := w*chunk, min((w+1)*chunk, len(pixels))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			dist := make([]float64, len(centroids))
			for i := lo; i < hi; i++ {
				for j, c := range centroids {
					dist[j] = PixelDistanceSq(pixels[i], c, scale)
				}
				next[i] = floats.MinIdx(dist)
				if prev != nil && next[i] != prev[i] {
					changes[w]++
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var total int
	for _, n := range changes {
		total += n
	}
	return total
}

// recompute replaces each centroid with the average of its cluster. A
// cluster with no pixels keeps its previous centroid.
func recompute(pixels []Pixel, assignment []int, centroids []Centroid) []int {
	stores := make([]clusterStore, len(centroids))
	for i, p := range pixels {
		stores[assignment[i]].add(p)
	}
	sizes := make([]int, len(centroids))
	for i := range stores {
		sizes[i] = stores[i].count()
		if sizes[i] == 0 {
			continue
		}
		centroids[i] = stores[i].centroid()
	}
	return sizes
}
