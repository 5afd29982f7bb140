package kmeans

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridPixels(w, h int, seed int64) []Pixel {
	rd := rand.New(rand.NewSource(seed))
	pixels := make([]Pixel, 0, w*h)
	for y := range h {
		for x := range w {
			pixels = append(pixels, Pixel{
				X:     x,
				Y:     y,
				Color: Color{float64(rd.Intn(256)), float64(rd.Intn(256)), float64(rd.Intn(256))},
			})
		}
	}
	return pixels
}

func rowPixels(xs ...int) []Pixel {
	pixels := make([]Pixel, len(xs))
	for i, x := range xs {
		pixels[i] = Pixel{X: x, Color: Color{10, 10, 10}}
	}
	return pixels
}

func config(k int, scale float64, seed int64) Config {
	return Config{K: k, Scale: scale, Rand: rand.New(rand.NewSource(seed))}
}

func TestCluster_InvalidInput(t *testing.T) {
	pixels := gridPixels(3, 2, 1)
	ctx := context.Background()

	for _, k := range []int{-1, 0, len(pixels) + 1} {
		_, err := Cluster(ctx, pixels, config(k, 1, 1))
		assert.ErrorIs(t, err, ErrInvalidClusterCount, "k=%d", k)
	}
	_, err := Cluster(ctx, nil, config(1, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Cluster(ctx, pixels, config(2, scale, 1))
		assert.ErrorIs(t, err, ErrInvalidScale, "scale=%v", scale)
	}
}

func TestCluster_TwoPixels(t *testing.T) {
	pixels := []Pixel{
		{X: 0, Y: 0, Color: Color{0, 0, 0}},
		{X: 1, Y: 0, Color: Color{255, 255, 255}},
	}
	for seed := range int64(10) {
		res, err := Cluster(context.Background(), pixels, config(2, 1, seed))
		require.NoError(t, err)

		assert.True(t, res.Converged)
		assert.Equal(t, 1, res.Iterations)
		assert.Zero(t, res.SSE)
		assert.NotEqual(t, res.Assignment[0], res.Assignment[1])
		for i, p := range pixels {
			assert.Equal(t, p.Centroid(), res.Centroids[res.Assignment[i]])
		}
	}
}

func TestCluster_DiagonalSplitsByColor(t *testing.T) {
	black, white := Color{0, 0, 0}, Color{255, 255, 255}
	pixels := []Pixel{
		{X: 0, Y: 0, Color: black},
		{X: 1, Y: 0, Color: white},
		{X: 0, Y: 1, Color: white},
		{X: 1, Y: 1, Color: black},
	}
	for seed := range int64(20) {
		res, err := Cluster(context.Background(), pixels, config(2, 1, seed))
		require.NoError(t, err)
		require.True(t, res.Converged)

		a := res.Assignment
		assert.Equal(t, a[0], a[3], "seed=%d", seed)
		assert.Equal(t, a[1], a[2], "seed=%d", seed)
		assert.NotEqual(t, a[0], a[1], "seed=%d", seed)
		assert.Equal(t, black, res.Centroids[a[0]].Color)
		assert.Equal(t, white, res.Centroids[a[1]].Color)
	}
}

func TestCluster_SingleCluster(t *testing.T) {
	pixels := gridPixels(7, 5, 3)
	res, err := Cluster(context.Background(), pixels, config(1, 0.5, 3))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	for _, a := range res.Assignment {
		assert.Equal(t, 0, a)
	}
	want, err := PixelAverage(pixels)
	require.NoError(t, err)
	assert.Equal(t, []Centroid{want}, res.Centroids)
	assert.Equal(t, SSE(pixels, res.Assignment, res.Centroids, 0.5), res.SSE)
}

func TestCluster_Singletons(t *testing.T) {
	pixels := gridPixels(4, 3, 5)
	res, err := Cluster(context.Background(), pixels, config(len(pixels), 1e-3, 5))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Zero(t, res.SSE)
	seen := make(map[int]bool)
	for i, a := range res.Assignment {
		assert.False(t, seen[a], "cluster %d used twice", a)
		seen[a] = true
		assert.Equal(t, pixels[i].Centroid(), res.Centroids[a])
	}
}

func TestCluster_ReassignIsIdempotent(t *testing.T) {
	pixels := gridPixels(12, 9, 11)
	scale := 144.0 / ColorDistanceSq(Color{}, Color{255, 255, 255})
	res, err := Cluster(context.Background(), pixels, config(5, scale, 11))
	require.NoError(t, err)
	require.True(t, res.Converged)

	assert.Equal(t, res.Assignment, Assign(pixels, res.Centroids, scale))
}

func TestCluster_SSENonIncreasing(t *testing.T) {
	pixels := gridPixels(20, 20, 13)
	var history []float64
	cfg := config(6, 1e30, 13)
	cfg.OnIteration = func(it Iteration) {
		history = append(history, it.SSE)
	}
	res, err := Cluster(context.Background(), pixels, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1]+1e-9, "iteration %d", i+1)
	}
	assert.Equal(t, len(history), res.Iterations)
	assert.InDelta(t, history[len(history)-1], res.SSE, 1e-9)
}

func TestCluster_BudgetKeepsLowestSSE(t *testing.T) {
	pixels := gridPixels(20, 20, 32)
	scale := 400.0 / ColorDistanceSq(Color{}, Color{255, 255, 255})
	for _, budget := range []int{1, 2, 3, 5} {
		var history []float64
		cfg := config(6, scale, 32)
		cfg.MaxIterations = budget
		cfg.OnIteration = func(it Iteration) {
			history = append(history, it.SSE)
		}
		res, err := Cluster(context.Background(), pixels, cfg)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		if res.Converged {
			continue
		}
		assert.Equal(t, slices.Min(history), res.SSE, "budget=%d", budget)
		assert.Equal(t, res.SSE, SSE(pixels, res.Assignment, res.Centroids, scale), "budget=%d", budget)
	}
}

func TestCluster_WorkersAgree(t *testing.T) {
	pixels := gridPixels(16, 11, 17)
	scale := 256.0 / ColorDistanceSq(Color{}, Color{255, 255, 255})

	single := config(4, scale, 17)
	single.Workers = 1
	want, err := Cluster(context.Background(), pixels, single)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 500} {
		cfg := config(4, scale, 17)
		cfg.Workers = workers
		got, err := Cluster(context.Background(), pixels, cfg)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestCluster_DoesNotMutateInput(t *testing.T) {
	pixels := gridPixels(6, 6, 19)
	orig := append([]Pixel(nil), pixels...)
	_, err := Cluster(context.Background(), pixels, config(3, 1, 19))
	require.NoError(t, err)
	assert.Equal(t, orig, pixels)
}

func TestCluster_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Cluster(ctx, gridPixels(5, 5, 23), config(2, 1, 23))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLloyd_EmptyClusterKeepsCentroid(t *testing.T) {
	pixels := rowPixels(0, 1, 2, 3)
	far := Centroid{X: 100, Y: 100, Color: Color{10, 10, 10}}
	centroids := []Centroid{pixels[0].Centroid(), far, pixels[3].Centroid()}

	var empties []int
	cfg := Config{Scale: 1, Workers: 1, OnIteration: func(it Iteration) {
		empties = append(empties, it.Empty)
		assert.Zero(t, it.Sizes[1])
	}}
	cfg.setDefaults()
	res, err := lloyd(context.Background(), pixels, centroids, cfg)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, []int{0, 0, 2, 2}, res.Assignment)
	assert.Equal(t, far, res.Centroids[1])
	assert.Equal(t, 0.5, res.Centroids[0].X)
	assert.Equal(t, 2.5, res.Centroids[2].X)
	assert.Equal(t, 1, res.EmptyClusters)
	assert.Equal(t, []int{1}, empties)
}

func TestLloyd_IterationBudget(t *testing.T) {
	pixels := rowPixels(0, 1, 2, 3, 4, 5, 6, 7)
	start := func() []Centroid {
		return []Centroid{pixels[0].Centroid(), pixels[1].Centroid()}
	}

	t.Run("exhausted", func(t *testing.T) {
		cfg := Config{Scale: 1, MaxIterations: 1}
		cfg.setDefaults()
		res, err := lloyd(context.Background(), pixels, start(), cfg)
		require.NoError(t, err)

		assert.False(t, res.Converged)
		assert.Equal(t, 1, res.Iterations)
		assert.Equal(t, []int{0, 1, 1, 1, 1, 1, 1, 1}, res.Assignment)
		assert.Equal(t, 4.0, res.Centroids[1].X)
		assert.Equal(t, 28.0, res.SSE)
	})
	t.Run("unbounded", func(t *testing.T) {
		cfg := Config{Scale: 1}
		cfg.setDefaults()
		res, err := lloyd(context.Background(), pixels, start(), cfg)
		require.NoError(t, err)

		assert.True(t, res.Converged)
		assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1}, res.Assignment)
		assert.Equal(t, 1.5, res.Centroids[0].X)
		assert.Equal(t, 5.5, res.Centroids[1].X)
	})
}

func BenchmarkCluster(b *testing.B) {
	pixels := gridPixels(128, 96, 29)
	scale := 128.0 * 128.0 / ColorDistanceSq(Color{}, Color{255, 255, 255})
	for b.Loop() {
		_, _ = Cluster(context.Background(), pixels, config(8, scale, 29))
	}
}
