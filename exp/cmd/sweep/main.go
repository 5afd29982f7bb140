package main

import (
	"context"
	"exp/internal/db"
	"exp/internal/images"
	"exp/internal/shuffle"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yyyoichi/colorsample"
	"golang.org/x/sync/errgroup"
)

type sweepConfig struct {
	kMin, kMax    int
	maxSide       int
	spaces        []colorsample.ColorSpace
	seed          int64
	maxIterations int
	parallel      int
	keepLabels    bool
}

func main() {
	list := flag.String("list", "", "file with one image path or URL per line")
	numImages := flag.Int("n", 10, "number of images to sweep (0 for all)")
	kMin := flag.Int("kmin", 2, "smallest K")
	kMax := flag.Int("kmax", 12, "largest K")
	maxSide := flag.Int("size", 160, "longer side images are downscaled to")
	spaceNames := flag.String("space", "rgb,yuv,lab", "comma separated color spaces")
	seed := flag.Int64("seed", 1234, "seed for image order and initial centroids")
	maxIter := flag.Int("max-iter", 300, "maximum iterations per run")
	parallel := flag.Int("p", 4, "number of K values clustered at once")
	keepLabels := flag.Bool("labels", false, "store bit-packed labels of every run")
	dbPath := flag.String("db", "/tmp/colorsample-sweep/sweep.db", "path to database file")
	outDir := flag.String("out", "/tmp/colorsample-sweep/charts", "directory for elbow charts")
	cacheDir := flag.String("cache", "/tmp/colorsample-sweep/http_cache/", "cache directory for remote images")
	flag.Parse()

	if *list == "" {
		log.Fatal("Please provide the image list with -list")
	}
	if *kMin < 1 || *kMax < *kMin {
		log.Fatalf("Invalid K range %d..%d", *kMin, *kMax)
	}
	cfg := sweepConfig{
		kMin:          *kMin,
		kMax:          *kMax,
		maxSide:       *maxSide,
		seed:          *seed,
		maxIterations: *maxIter,
		parallel:      *parallel,
		keepLabels:    *keepLabels,
	}
	for _, name := range strings.Split(*spaceNames, ",") {
		s, err := colorsample.ColorSpaceByName(strings.TrimSpace(name))
		if err != nil {
			log.Fatal(err)
		}
		cfg.spaces = append(cfg.spaces, s)
	}

	f, err := os.Open(*list)
	if err != nil {
		log.Fatalf("Failed to open image list: %v", err)
	}
	uris, err := images.ParseList(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read image list: %v", err)
	}
	if len(uris) == 0 {
		log.Fatal("No images found")
	}
	uris = shuffle.Sample(uris, *numImages, *seed)

	for _, dir := range []string{filepath.Dir(*dbPath), *outDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory: %v", err)
		}
	}
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	loader := images.NewLoader(*cacheDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Sweeping K=%d..%d over %d images\n", cfg.kMin, cfg.kMax, len(uris))
	for i, uri := range uris {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		sizeID, err := sweepImage(ctx, database, loader, uri, cfg, logger)
		if err != nil {
			log.Printf("[%d/%d] %s: %v\n", i+1, len(uris), uri, err)
			continue
		}
		chart := filepath.Join(*outDir, fmt.Sprintf("elbow_%d.html", sizeID))
		if err := renderElbow(database, sizeID, uri, chart); err != nil {
			log.Printf("[%d/%d] %s: chart: %v\n", i+1, len(uris), uri, err)
			continue
		}
		log.Printf("[%d/%d] %s done in %v -> %s\n", i+1, len(uris), uri, time.Since(start).Round(time.Millisecond), chart)
	}
}

// sweepImage clusters one image for every color space and K and stores the
// runs. It returns the image size ID the runs were stored under.
func sweepImage(ctx context.Context, database *db.DB, loader *images.Loader, uri string, cfg sweepConfig, logger *slog.Logger) (int64, error) {
	src, err := loader.Load(uri)
	if err != nil {
		return 0, err
	}
	src = images.Downscale(src, cfg.maxSide)
	b := src.Bounds()

	imageID, err := database.InsertImage(uri)
	if err != nil {
		return 0, err
	}
	sizeID, err := database.InsertImageSize(imageID, b.Dx(), b.Dy())
	if err != nil {
		return 0, err
	}

	batch := colorsample.NewBatch(src)
	for _, space := range cfg.spaces {
		paramID, err := database.InsertRunParam(db.RunParam{
			ColorSpace:    space.Name(),
			Scale:         colorsample.DefaultScale(b.Dx(), b.Dy(), space),
			Seed:          cfg.seed,
			MaxIterations: cfg.maxIterations,
		})
		if err != nil {
			return 0, err
		}

		var (
			mu      sync.Mutex
			results []*db.Result
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.parallel)
		for k := cfg.kMin; k <= min(cfg.kMax, b.Dx()*b.Dy()); k++ {
			g.Go(func() error {
				start := time.Now()
				res, err := batch.Quantize(gctx, k,
					colorsample.WithColorSpace(space),
					colorsample.WithSeed(cfg.seed),
					colorsample.WithMaxIterations(cfg.maxIterations),
					colorsample.WithWorkers(1),
					colorsample.WithLogger(logger.With("uri", uri)),
				)
				if err != nil {
					return err
				}
				r := &db.Result{
					ImageSizeID:   sizeID,
					RunParamID:    paramID,
					K:             k,
					SSE:           res.SSE,
					Iterations:    res.Iterations,
					Converged:     res.Converged,
					EmptyClusters: res.EmptyClusters,
					DurationMS:    float64(time.Since(start).Microseconds()) / 1000,
				}
				if cfg.keepLabels {
					if r.Labels, err = res.MarshalLabels(); err != nil {
						return err
					}
				}
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return 0, fmt.Errorf("%s: %w", space.Name(), err)
		}

		// SQLite takes one writer at a time, so results are stored after the
		// runs finish.
		if err := database.InsertResults(results); err != nil {
			return 0, err
		}
	}
	return sizeID, nil
}
