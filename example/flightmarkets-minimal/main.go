package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	flightstats "github.com/DevOps8012/tutorial-201209-TDWI-big-data"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

func getenvDefault(name, d string) string {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	return v
}

func getenvInt(name string, d int) int {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func main() {
	workDir := getenvDefault("WORK_DIR", "work")
	inputDir := filepath.Join(workDir, "input")
	outputDir := filepath.Join(workDir, "out")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		log.Fatal(err)
	}

	shard := filepath.Join(inputDir, "sample-00.csv")
	if err := flights.GenerateSample(shard, flights.GenConfig{
		Rows: getenvInt("SAMPLE_ROWS", 5000),
		Year: getenvInt("SAMPLE_YEAR", 2004),
	}); err != nil {
		log.Fatal(err)
	}

	spec := flightstats.MarketJob([]string{shard}, outputDir, flights.ReaderConfig{})
	h, err := flightstats.Run(context.Background(), spec, flightstats.Config{
		Workers: getenvInt("WORKERS", 4),
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("computed %d market group(s) from %d record(s)", h.Groups, h.Records)
	for _, out := range h.Outputs {
		log.Printf("aggregates: %s", out)
	}
}
