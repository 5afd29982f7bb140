package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// InsertImage inserts or gets an existing image by URI
func (d *DB) InsertImage(uri string) (int64, error) {
	var id int64
	err := d.db.QueryRow("SELECT id FROM images WHERE uri = ?", uri).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query image: %w", err)
	}

	result, err := d.db.Exec("INSERT INTO images (uri) VALUES (?)", uri)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}
	return result.LastInsertId()
}

// InsertImageSize inserts or gets an existing image size
func (d *DB) InsertImageSize(imageID int64, width, height int) (int64, error) {
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM image_sizes WHERE image_id = ? AND width = ? AND height = ?",
		imageID, width, height,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query image size: %w", err)
	}

	result, err := d.db.Exec(
		"INSERT INTO image_sizes (image_id, width, height) VALUES (?, ?, ?)",
		imageID, width, height,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image size: %w", err)
	}
	return result.LastInsertId()
}

// InsertRunParam inserts or gets existing run parameters
func (d *DB) InsertRunParam(p RunParam) (int64, error) {
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM run_params WHERE color_space = ? AND scale = ? AND seed = ? AND max_iterations = ?",
		p.ColorSpace, p.Scale, p.Seed, p.MaxIterations,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query run param: %w", err)
	}

	result, err := d.db.Exec(
		"INSERT INTO run_params (color_space, scale, seed, max_iterations) VALUES (?, ?, ?, ?)",
		p.ColorSpace, p.Scale, p.Seed, p.MaxIterations,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run param: %w", err)
	}
	return result.LastInsertId()
}

// InsertResult inserts a result, replacing an earlier run with the same
// image size, parameters and K.
func (d *DB) InsertResult(result *Result) (int64, error) {
	return insertResult(d.db, result)
}

func insertResult(q querier, result *Result) (int64, error) {
	var existingID int64
	err := q.QueryRow(
		"SELECT id FROM results WHERE image_size_id = ? AND run_param_id = ? AND k = ?",
		result.ImageSizeID, result.RunParamID, result.K,
	).Scan(&existingID)

	if err == nil {
		_, err = q.Exec(`
			UPDATE results SET
				sse = ?,
				iterations = ?,
				converged = ?,
				empty_clusters = ?,
				duration_ms = ?,
				labels = ?
			WHERE id = ?`,
			result.SSE,
			result.Iterations,
			result.Converged,
			result.EmptyClusters,
			result.DurationMS,
			result.Labels,
			existingID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update result: %w", err)
		}
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query existing result: %w", err)
	}

	res, err := q.Exec(`
		INSERT INTO results (
			image_size_id, run_param_id, k,
			sse, iterations, converged, empty_clusters, duration_ms, labels
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ImageSizeID,
		result.RunParamID,
		result.K,
		result.SSE,
		result.Iterations,
		result.Converged,
		result.EmptyClusters,
		result.DurationMS,
		result.Labels,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}
	return res.LastInsertId()
}

// GetImageSize retrieves an image size by ID
func (d *DB) GetImageSize(id int64) (*ImageSize, error) {
	var size ImageSize
	err := d.db.QueryRow(
		"SELECT id, image_id, width, height FROM image_sizes WHERE id = ?", id,
	).Scan(&size.ID, &size.ImageID, &size.Width, &size.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}
	return &size, nil
}

// GetLabels returns the stored labels of a result, nil if none were kept.
func (d *DB) GetLabels(resultID int64) ([]byte, error) {
	var labels []byte
	err := d.db.QueryRow("SELECT labels FROM results WHERE id = ?", resultID).Scan(&labels)
	if err != nil {
		return nil, fmt.Errorf("failed to get labels: %w", err)
	}
	return labels, nil
}

// ListResults retrieves all results
func (d *DB) ListResults() ([]*Result, error) {
	rows, err := d.db.Query(`
		SELECT id, image_size_id, run_param_id, k,
		       sse, iterations, converged, empty_clusters, duration_ms
		FROM results
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var r Result
		err := rows.Scan(
			&r.ID, &r.ImageSizeID, &r.RunParamID, &r.K,
			&r.SSE, &r.Iterations, &r.Converged, &r.EmptyClusters, &r.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// CountResults counts total results
func (d *DB) CountResults() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
