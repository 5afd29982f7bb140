package main

import (
	"encoding/json"
	"exp/internal/db"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yyyoichi/colorsample"
)

func main() {
	dbPath := flag.String("db", "/tmp/colorsample-sweep/sweep.db", "Path to database file")
	queryType := flag.String("query", "stats", "Query type: stats, k-stats, sizes, elbow, not-converged, labels, raw")
	sizeID := flag.Int64("size-id", 0, "Image size ID for the elbow query")
	resultID := flag.Int64("result-id", 0, "Result ID for the labels query")
	rawSQL := flag.String("sql", "", "Raw SQL query to execute")

	flag.Parse()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	switch *queryType {
	case "stats":
		count, err := database.CountResults()
		if err != nil {
			log.Fatalf("Failed to count results: %v", err)
		}
		fmt.Printf("Total results: %d\n", count)

	case "k-stats":
		stats, err := database.GetKStats()
		if err != nil {
			log.Fatalf("Failed to get K stats: %v", err)
		}
		printJSON(stats)

	case "sizes":
		sizes, uris, err := database.ListImageSizes()
		if err != nil {
			log.Fatalf("Failed to list image sizes: %v", err)
		}
		for _, s := range sizes {
			fmt.Printf("%d\t%dx%d\t%s\n", s.ID, s.Width, s.Height, uris[s.ID])
		}

	case "elbow":
		results, err := database.GetElbow(*sizeID)
		if err != nil {
			log.Fatalf("Failed to get elbow: %v", err)
		}
		printJSON(results)

	case "not-converged":
		results, err := database.GetNonConverged()
		if err != nil {
			log.Fatalf("Failed to get results: %v", err)
		}
		printJSON(results)

	case "labels":
		data, err := database.GetLabels(*resultID)
		if err != nil {
			log.Fatalf("Failed to get labels: %v", err)
		}
		if data == nil {
			log.Fatalf("Result %d was stored without labels", *resultID)
		}
		assignment, k, err := colorsample.UnmarshalLabels(data)
		if err != nil {
			log.Fatalf("Failed to decode labels: %v", err)
		}
		sizes := make([]int, k)
		for _, c := range assignment {
			sizes[c]++
		}
		printJSON(map[string]any{"k": k, "pixels": len(assignment), "sizes": sizes})

	case "raw":
		if *rawSQL == "" {
			log.Fatal("Please provide SQL query with -sql flag")
		}
		rows, err := database.ExecuteRawQuery(*rawSQL)
		if err != nil {
			log.Fatalf("Failed to execute query: %v", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			log.Fatalf("Failed to get columns: %v", err)
		}

		fmt.Println("Columns:", cols)
		for rows.Next() {
			values := make([]any, len(cols))
			valuePtrs := make([]any, len(cols))
			for i := range values {
				valuePtrs[i] = &values[i]
			}

			if err := rows.Scan(valuePtrs...); err != nil {
				log.Fatalf("Failed to scan row: %v", err)
			}
			for i, col := range cols {
				fmt.Printf("%s: %v\n", col, values[i])
			}
			fmt.Println("---")
		}

	default:
		log.Fatalf("Unknown query type: %s", *queryType)
	}
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}
}
