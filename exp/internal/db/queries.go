package db

import (
	"database/sql"
	"fmt"
)

// DetailedResult contains all joined information for a result
type DetailedResult struct {
	ID int64

	ImageURI    string
	ImageSizeID int64
	Width       int
	Height      int

	ColorSpace    string
	Scale         float64
	Seed          int64
	MaxIterations int

	K             int
	SSE           float64
	SSEPerPixel   float64
	Iterations    int
	Converged     bool
	EmptyClusters int
	DurationMS    float64
}

// QueryDetailed executes a query on the results_detailed view
func (d *DB) QueryDetailed(query string, args ...any) ([]*DetailedResult, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []*DetailedResult
	for rows.Next() {
		var r DetailedResult
		err := rows.Scan(
			&r.ID,
			&r.ImageURI,
			&r.ImageSizeID,
			&r.Width,
			&r.Height,
			&r.ColorSpace,
			&r.Scale,
			&r.Seed,
			&r.MaxIterations,
			&r.K,
			&r.SSE,
			&r.SSEPerPixel,
			&r.Iterations,
			&r.Converged,
			&r.EmptyClusters,
			&r.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// GetElbow returns the results of one image size ordered by color space and K
func (d *DB) GetElbow(imageSizeID int64) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT * FROM results_detailed
		WHERE image_size_id = ?
		ORDER BY color_space, k
	`, imageSizeID)
}

// GetNonConverged returns the runs that spent their iteration budget
func (d *DB) GetNonConverged() ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT * FROM results_detailed
		WHERE converged = 0
		ORDER BY image_uri, color_space, k
	`)
}

// KStats holds statistics for one K in one color space
type KStats struct {
	ColorSpace      string
	K               int
	TotalRuns       int
	ConvergenceRate float64
	AvgSSEPerPixel  float64
	AvgIterations   float64
	AvgEmpty        float64
	AvgDurationMS   float64
}

// GetKStats returns statistics grouped by color space and K
func (d *DB) GetKStats() ([]*KStats, error) {
	rows, err := d.db.Query(`
		SELECT
			color_space, k,
			COUNT(*) as total_runs,
			AVG(CASE WHEN converged THEN 1.0 ELSE 0.0 END) as convergence_rate,
			AVG(sse_per_pixel) as avg_sse_per_pixel,
			AVG(iterations) as avg_iterations,
			AVG(empty_clusters) as avg_empty,
			AVG(duration_ms) as avg_duration_ms
		FROM results_detailed
		GROUP BY color_space, k
		ORDER BY color_space, k
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query k stats: %w", err)
	}
	defer rows.Close()

	var stats []*KStats
	for rows.Next() {
		var s KStats
		err := rows.Scan(
			&s.ColorSpace, &s.K,
			&s.TotalRuns, &s.ConvergenceRate,
			&s.AvgSSEPerPixel, &s.AvgIterations, &s.AvgEmpty, &s.AvgDurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ListImageSizes returns every image size with its URI
func (d *DB) ListImageSizes() ([]*ImageSize, map[int64]string, error) {
	rows, err := d.db.Query(`
		SELECT isz.id, isz.image_id, isz.width, isz.height, i.uri
		FROM image_sizes isz
		JOIN images i ON isz.image_id = i.id
		ORDER BY isz.id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query image sizes: %w", err)
	}
	defer rows.Close()

	var sizes []*ImageSize
	uris := make(map[int64]string)
	for rows.Next() {
		var s ImageSize
		var uri string
		if err := rows.Scan(&s.ID, &s.ImageID, &s.Width, &s.Height, &uri); err != nil {
			return nil, nil, fmt.Errorf("failed to scan: %w", err)
		}
		sizes = append(sizes, &s)
		uris[s.ID] = uri
	}
	return sizes, uris, rows.Err()
}

// ExecuteRawQuery executes a raw SQL query and returns rows
func (d *DB) ExecuteRawQuery(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}
