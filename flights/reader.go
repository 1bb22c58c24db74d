package flights

import (
	"bufio"
	"os"
	"strings"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/pipeline"
)

// ReaderConfig tunes delimited input parsing.
type ReaderConfig struct {
	// Delimiter separates fields within a line. Defaults to ",".
	Delimiter string
}

func (c *ReaderConfig) withDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
}

// TableReader streams Records out of one delimited text file. Lines that
// do not bind to the schema are skipped and counted, never surfaced as
// errors, so one mangled row cannot sink a whole dataset.
type TableReader struct {
	f       *os.File
	sc      *bufio.Scanner
	delim   string
	skipped int
}

// OpenTable opens path for record streaming.
func OpenTable(path string, cfg ReaderConfig) (*TableReader, error) {
	cfg.withDefaults()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &TableReader{f: f, sc: sc, delim: cfg.Delimiter}, nil
}

// Read returns up to n records, resuming after the last record returned by
// the previous call. An exhausted file yields an empty slice and no error.
func (r *TableReader) Read(n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	recs := make([]Record, 0, n)
	for len(recs) < n && r.sc.Scan() {
		line := r.sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, r.delim)
		if len(fields) != FieldCount {
			r.skipped++
			continue
		}
		recs = append(recs, bindRecord(fields))
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Skipped returns how many lines failed to bind so far.
func (r *TableReader) Skipped() int { return r.skipped }

func (r *TableReader) Close() error { return r.f.Close() }

// Input adapts TableReader construction to the engine's input contract.
func Input(cfg ReaderConfig) pipeline.InputOpener[Record] {
	return func(path string) (pipeline.InputFormat[Record], error) {
		return OpenTable(path, cfg)
	}
}
