package flights

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// GenConfig controls synthetic dataset generation.
type GenConfig struct {
	Rows      int
	Year      int
	Seed      int64
	Airports  []string
	Delimiter string
}

func (c *GenConfig) withDefaults() {
	if c.Rows <= 0 {
		c.Rows = 10000
	}
	if c.Year <= 0 {
		c.Year = 2004
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if len(c.Airports) < 2 {
		c.Airports = []string{"ATL", "DEN", "JFK", "LAX", "ORD", "SFO"}
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
}

var carriers = []string{"AA", "DL", "UA", "WN"}

// GenerateSample writes a synthetic on-time performance table to path,
// header line included. The same seed always produces the same file. A
// slice of the rows carries missing measurements, cancellations and
// diversions so the full filter and missing-value paths get exercised.
func GenerateSample(path string, cfg GenConfig) error {
	cfg.withDefaults()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	b := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(cfg.Seed))

	fmt.Fprintln(b, strings.Join(Columns, cfg.Delimiter))
	for i := 0; i < cfg.Rows; i++ {
		fmt.Fprintln(b, strings.Join(sampleRow(rng, cfg, i), cfg.Delimiter))
	}
	if err := b.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sampleRow(rng *rand.Rand, cfg GenConfig, flightNum int) []string {
	origin := cfg.Airports[rng.Intn(len(cfg.Airports))]
	dest := cfg.Airports[rng.Intn(len(cfg.Airports))]
	for dest == origin {
		dest = cfg.Airports[rng.Intn(len(cfg.Airports))]
	}

	scheduled := 60 + rng.Intn(300)
	actual := scheduled - 30 + rng.Intn(61)
	air := actual - 15 - rng.Intn(30)
	if air < 5 {
		air = 5
	}
	depTime := 600 + rng.Intn(1200)

	actualField := fmt.Sprintf("%d", actual)
	airField := fmt.Sprintf("%d", air)
	cancelled := "0"
	cancellationCode := ""
	diverted := "0"

	switch {
	case rng.Intn(40) == 0:
		cancelled = "1"
		cancellationCode = "A"
		actualField, airField = Missing, Missing
	case rng.Intn(50) == 0:
		diverted = "1"
		actualField, airField = Missing, Missing
	case rng.Intn(25) == 0:
		airField = Missing
	}

	return []string{
		fmt.Sprintf("%d", cfg.Year),
		fmt.Sprintf("%d", 1+rng.Intn(12)),
		fmt.Sprintf("%d", 1+rng.Intn(28)),
		fmt.Sprintf("%d", 1+rng.Intn(7)),
		fmt.Sprintf("%d", depTime),
		fmt.Sprintf("%d", depTime-rng.Intn(20)),
		fmt.Sprintf("%d", depTime+actual),
		fmt.Sprintf("%d", depTime+scheduled),
		carriers[rng.Intn(len(carriers))],
		fmt.Sprintf("%d", 100+flightNum),
		fmt.Sprintf("N%05d", rng.Intn(100000)),
		actualField,
		fmt.Sprintf("%d", scheduled),
		airField,
		fmt.Sprintf("%d", actual-scheduled),
		fmt.Sprintf("%d", rng.Intn(30)),
		origin,
		dest,
		fmt.Sprintf("%d", 200+rng.Intn(2500)),
		fmt.Sprintf("%d", 2+rng.Intn(15)),
		fmt.Sprintf("%d", 5+rng.Intn(25)),
		cancelled,
		cancellationCode,
		diverted,
		Missing,
		Missing,
		Missing,
		Missing,
		Missing,
	}
}
