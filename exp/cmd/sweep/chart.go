package main

import (
	"exp/internal/db"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderElbow writes a line chart of SSE per pixel over K, one line per color
// space, for the runs stored under imageSizeID.
func renderElbow(database *db.DB, imageSizeID int64, uri, name string) error {
	results, err := database.GetElbow(imageSizeID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no results for image size %d", imageSizeID)
	}

	var (
		ks     []int
		seen   = make(map[int]bool)
		spaces []string
		series = make(map[string]map[int]*db.DetailedResult)
	)
	for _, r := range results {
		if !seen[r.K] {
			seen[r.K] = true
			ks = append(ks, r.K)
		}
		if _, ok := series[r.ColorSpace]; !ok {
			spaces = append(spaces, r.ColorSpace)
			series[r.ColorSpace] = make(map[int]*db.DetailedResult)
		}
		series[r.ColorSpace][r.K] = r
	}
	// results are ordered by color space first
	slices.Sort(ks)

	xAxis := make([]string, len(ks))
	for i, k := range ks {
		xAxis[i] = strconv.Itoa(k)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "SSE per pixel by K",
			Subtitle: fmt.Sprintf("%s (%dx%d)", filepath.Base(uri), results[0].Width, results[0].Height),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "K",
			Type: "category",
			Data: xAxis,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "SSE / pixel",
			Type: "value",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)
	line.SetXAxis(xAxis)

	for _, space := range spaces {
		data := make([]opts.LineData, len(ks))
		for i, k := range ks {
			r, ok := series[space][k]
			if !ok {
				data[i] = opts.LineData{Value: nil}
				continue
			}
			label := fmt.Sprintf("K=%d: %d iterations", k, r.Iterations)
			if !r.Converged {
				label += " (not converged)"
			}
			data[i] = opts.LineData{Value: r.SSEPerPixel, Name: label}
		}
		line.AddSeries(space, data)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}
