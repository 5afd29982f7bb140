// Package images loads the sweep inputs from local files or URLs and brings
// them down to a size the clustering can handle.
package images

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ParseList reads one path or URL per line. Blank lines and lines starting
// with # are skipped.
func ParseList(r io.Reader) ([]string, error) {
	var uris []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	return uris, scanner.Err()
}

// rateLimitedClient wraps an HTTP client with rate limiting between requests
// Thread-safe for concurrent requests
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.lastCall); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}

// Loader opens sweep inputs. Remote images are cached on disk so repeated
// sweeps do not fetch them again.
type Loader struct {
	client httpcache.Client
}

func NewLoader(cacheDir string) *Loader {
	return &Loader{client: httpcache.Client{
		Client:  &rateLimitedClient{client: http.DefaultClient, interval: 250 * time.Millisecond},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}}
}

// Load decodes the image at uri, which is either an http(s) URL or a file path.
func (l *Loader) Load(uri string) (image.Image, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return l.fetch(uri)
	}
	f, err := os.Open(uri)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	return img, nil
}

func (l *Loader) fetch(uri string) (image.Image, error) {
	resp, err := l.client.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	return img, nil
}

// Downscale shrinks src so its longer side is at most maxSide, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Downscale(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || max(w, h) <= maxSide {
		return src
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dist := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, b, draw.Over, nil)
	return dist
}
