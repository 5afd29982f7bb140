// Package grid stitches timestamped camera snapshots into one image: a row
// per day and a column per time slot, 24 hours wide.
package grid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSize      = errors.New("one of thumbnail width or height must be set")
	ErrInvalidMode = errors.New("invalid thumbnail mode")
	ErrNoSnapshots = errors.New("no snapshots found")
)

type Mode int

const (
	// ModeResize scales the snapshot to the thumbnail size.
	ModeResize Mode = 1
	// ModeMirror scales the snapshot to a quarter of the thumbnail and tiles
	// it flipped horizontally and vertically, so neighbouring thumbnails
	// meet at matching edges.
	ModeMirror Mode = 2
)

const DefaultFramesPerHour = 6

type Config struct {
	Dir string
	// FS overrides Dir when set.
	FS fs.FS

	// A zero dimension is derived from the other one with a 4:3 aspect.
	ThumbWidth  int
	ThumbHeight int
	Mode        Mode
	Workers     int
	// FramesPerHour must divide 60.
	FramesPerHour int
}

func (c *Config) normalize() error {
	if c.ThumbWidth <= 0 && c.ThumbHeight <= 0 {
		return ErrNoSize
	}
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = c.ThumbHeight * 4 / 3
	}
	if c.ThumbHeight <= 0 {
		c.ThumbHeight = c.ThumbWidth * 3 / 4
	}
	if c.Mode == 0 {
		c.Mode = ModeResize
	}
	if c.Mode != ModeResize && c.Mode != ModeMirror {
		return fmt.Errorf("%w: %d", ErrInvalidMode, c.Mode)
	}
	if c.FramesPerHour == 0 {
		c.FramesPerHour = DefaultFramesPerHour
	}
	if c.FramesPerHour < 0 || 60%c.FramesPerHour != 0 {
		return fmt.Errorf("frames per hour must divide 60: %d", c.FramesPerHour)
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.FS == nil {
		c.FS = os.DirFS(c.Dir)
	}
	return nil
}

// Key locates a snapshot in the grid.
type Key struct {
	Day  string
	Hour int
	Slot int
}

var snapshotName = regexp.MustCompile(`^(\d{4}-\d\d-\d\d)T(\d\d):(\d\d):\d\d[+-]\d\d:\d\d\.jpg`)

// Index holds the snapshots of a directory by grid position.
type Index struct {
	Days  []string
	Files map[Key]string
}

// NewIndex keeps the names of the form 2018-06-01T13:20:00+00:00.jpg. A name
// whose minute does not fall on a slot boundary is left out. When two names
// share a slot the later one in names wins.
func NewIndex(names []string, framesPerHour int) *Index {
	step := 60 / framesPerHour
	idx := &Index{Files: make(map[Key]string)}
	for _, name := range names {
		m := snapshotName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if !slices.Contains(idx.Days, m[1]) {
			idx.Days = append(idx.Days, m[1])
		}
		hour, _ := strconv.Atoi(m[2])
		minute, _ := strconv.Atoi(m[3])
		if minute%step != 0 {
			continue
		}
		idx.Files[Key{Day: m[1], Hour: hour, Slot: minute / step}] = name
	}
	slices.Sort(idx.Days)
	return idx
}

// Build reads every snapshot in the configured directory and pastes its
// thumbnail into a canvas of ThumbWidth*24*FramesPerHour by
// ThumbHeight*days. Empty slots stay black.
func Build(ctx context.Context, cfg Config, logger *slog.Logger) (*image.RGBA, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entries, err := fs.ReadDir(cfg.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read snapshot directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	idx := NewIndex(names, cfg.FramesPerHour)
	if len(idx.Days) == 0 {
		return nil, ErrNoSnapshots
	}
	logger.InfoContext(ctx, "found snapshots", "days", len(idx.Days), "files", len(idx.Files))

	w, h := cfg.ThumbWidth, cfg.ThumbHeight
	canvas := image.NewRGBA(image.Rect(0, 0, w*24*cfg.FramesPerHour, h*len(idx.Days)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for row, day := range idx.Days {
		for hour := range 24 {
			for slot := range cfg.FramesPerHour {
				key := Key{Day: day, Hour: hour, Slot: slot}
				name, ok := idx.Files[key]
				if !ok {
					logger.DebugContext(ctx, "missing snapshot", "day", day, "hour", hour, "slot", slot)
					continue
				}
				col := hour*cfg.FramesPerHour + slot
				at := image.Pt(col*w, row*h)
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					src, err := decode(cfg.FS, name)
					if err != nil {
						return err
					}
					// Thumbnails cover disjoint rectangles of the canvas.
					thumb := thumbnail(src, w, h, cfg.Mode)
					draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(thumb.Rect.Size())}, thumb, image.Point{}, draw.Src)
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return canvas, nil
}

func decode(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

func thumbnail(src image.Image, w, h int, mode Mode) *image.RGBA {
	if mode == ModeResize {
		return resize(src, w, h)
	}
	quarter := resize(src, (w+1)/2, (h+1)/2)
	thumb := image.NewRGBA(image.Rect(0, 0, w, h))
	paste(thumb, quarter, 0, 0)
	paste(thumb, flip(quarter, true, false), w/2, 0)
	paste(thumb, flip(quarter, false, true), 0, h/2)
	paste(thumb, flip(quarter, true, true), w/2, h/2)
	return thumb
}

func resize(src image.Image, w, h int) *image.RGBA {
	dist := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dist, dist.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dist
}

func paste(dst, src *image.RGBA, x, y int) {
	r := src.Rect.Add(image.Pt(x, y)).Intersect(dst.Rect)
	draw.Draw(dst, r, src, image.Point{}, draw.Src)
}

// flip mirrors src left-right and/or top-bottom. Both at once is a 180
// degree rotation.
func flip(src *image.RGBA, horizontal, vertical bool) *image.RGBA {
	b := src.Rect
	dist := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx, sy := x, y
			if horizontal {
				sx = b.Max.X - 1 - (x - b.Min.X)
			}
			if vertical {
				sy = b.Max.Y - 1 - (y - b.Min.Y)
			}
			dist.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dist
}
