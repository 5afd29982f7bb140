package main

import (
	"context"
	"flag"
	"image/jpeg"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/yyyoichi/colorsample/internal/grid"
)

func main() {
	dir := flag.String("dir", ".", "directory holding the snapshots")
	width := flag.Int("width", 75, "thumbnail width (0 derives it from height at 4:3)")
	height := flag.Int("height", 0, "thumbnail height (0 derives it from width at 4:3)")
	mode := flag.Int("mode", int(grid.ModeResize), "1: resize, 2: mirrored quarters")
	frames := flag.Int("frames", grid.DefaultFramesPerHour, "snapshots per hour")
	workers := flag.Int("workers", 7, "number of thumbnails resized at once")
	out := flag.String("out", "outfile.jpg", "output file")
	quality := flag.Int("quality", 90, "JPEG quality")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	canvas, err := grid.Build(ctx, grid.Config{
		Dir:           *dir,
		ThumbWidth:    *width,
		ThumbHeight:   *height,
		Mode:          grid.Mode(*mode),
		Workers:       *workers,
		FramesPerHour: *frames,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, canvas, &jpeg.Options{Quality: *quality}); err != nil {
		log.Fatalf("Failed to encode grid: %v", err)
	}
	logger.Info("wrote grid", "file", *out, "bounds", canvas.Bounds())
}
