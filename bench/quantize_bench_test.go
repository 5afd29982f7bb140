package bench_test

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/yyyoichi/colorsample"
)

// BenchmarkQuantize runs a table of quantize benchmarks over image sizes and
// color spaces.
func BenchmarkQuantize(b *testing.B) {
	sizes := [][2]int{{64, 48}, {160, 120}, {320, 240}}
	spaces := []colorsample.ColorSpace{colorsample.RGB, colorsample.YUV, colorsample.Lab}
	ctx := b.Context()

	for _, size := range sizes {
		img := createImage(size[0], size[1])
		for _, space := range spaces {
			b.Run(fmt.Sprintf("%dx%d_%s", size[0], size[1], space.Name()), func(b *testing.B) {
				q, err := colorsample.New(colorsample.WithSeed(1), colorsample.WithColorSpace(space))
				if err != nil {
					b.Fatalf("Failed to create Quantizer: %v", err)
				}
				for b.Loop() {
					if _, err := q.Quantize(ctx, img, 8); err != nil {
						b.Fatalf("Failed to quantize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkBatch_K compares clustering the same image for growing K, reusing
// the encoded pixels.
func BenchmarkBatch_K(b *testing.B) {
	batch := colorsample.NewBatch(createImage(160, 120))
	ctx := b.Context()
	for _, k := range []int{2, 4, 8, 16, 32} {
		b.Run(fmt.Sprintf("K%d", k), func(b *testing.B) {
			for b.Loop() {
				if _, err := batch.Quantize(ctx, k, colorsample.WithSeed(1)); err != nil {
					b.Fatalf("Failed to quantize: %v", err)
				}
			}
		})
	}
}

func BenchmarkQuantize_Workers(b *testing.B) {
	img := createImage(320, 240)
	ctx := b.Context()
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("W%d", workers), func(b *testing.B) {
			for b.Loop() {
				_, err := colorsample.Quantize(ctx, img, 8,
					colorsample.WithSeed(1),
					colorsample.WithWorkers(workers),
					colorsample.WithMaxIterations(20),
				)
				if err != nil {
					b.Fatalf("Failed to quantize: %v", err)
				}
			}
		})
	}
}

// createImage creates a widthxheight test image with gradient pattern
func createImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(((x + y) * 255) / (width + height))
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}
