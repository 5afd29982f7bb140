package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/yyyoichi/colorsample"
)

func main() {
	k := flag.Int("k", 4, "number of clusters")
	scale := flag.Float64("scale", 0, "color distance divisor (0 derives it from the image size)")
	space := flag.String("space", "rgb", "color space to cluster in: rgb, yuv or lab")
	seed := flag.Int64("seed", -1, "seed for the initial centroids (-1 uses the clock)")
	maxIter := flag.Int("max-iter", 300, "maximum number of iterations")
	workers := flag.Int("workers", 0, "assign-phase goroutines (0 uses GOMAXPROCS)")
	out := flag.String("out", ".", "output directory")
	labels := flag.Bool("labels", false, "also write the bit-packed cluster labels")
	verbose := flag.Bool("v", false, "log every iteration")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cs, err := colorsample.ColorSpaceByName(*space)
	if err != nil {
		log.Fatal(err)
	}
	opts := []colorsample.Option{
		colorsample.WithColorSpace(cs),
		colorsample.WithMaxIterations(*maxIter),
		colorsample.WithWorkers(*workers),
		colorsample.WithLogger(logger),
	}
	if *scale != 0 {
		opts = append(opts, colorsample.WithScale(*scale))
	}
	if *seed >= 0 {
		opts = append(opts, colorsample.WithSeed(*seed))
	}

	src, err := load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	logger.Debug("loaded", "name", flag.Arg(0), "bounds", src.Bounds())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := colorsample.Quantize(ctx, src, *k, opts...)
	if err != nil {
		log.Fatalf("Failed to quantize image: %v", err)
	}
	logger.Info("done", "elapsed", time.Since(start), "iterations", res.Iterations, "converged", res.Converged)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	for i := range res.K {
		if err := writePNG(filepath.Join(*out, colorsample.ClusterFileName(i, res.K)), res.ClusterImage(i)); err != nil {
			log.Fatal(err)
		}
	}
	if err := writePNG(filepath.Join(*out, colorsample.PaletteFileName(res.K)), res.PaletteImage()); err != nil {
		log.Fatal(err)
	}
	if *labels {
		data, err := res.MarshalLabels()
		if err != nil {
			log.Fatal(err)
		}
		name := filepath.Join(*out, fmt.Sprintf("%dclusterlabels.bin", res.K))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Number of clusters: %d\n", res.K)
	fmt.Printf("Sum of squared error: %v\n", res.SSE)
}

func load(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
