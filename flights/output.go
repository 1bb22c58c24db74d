package flights

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/pipeline"
)

// Missing marks an undefined mean in rendered output. It is what a reader
// sees when a group had no values for a field; a zero there would claim a
// measurement that never happened.
const Missing = "NA"

// OutputHeader is the first line of every aggregate output shard.
const OutputHeader = "year,market,flights,scheduled,actual,in_air"

// AggregateWriter renders aggregates as delimited text, one shard per
// writer. Rows buffer until Close, which writes them ordered by year then
// market so equal inputs always produce byte-equal shards.
type AggregateWriter struct {
	f    *os.File
	rows []Aggregate
}

// CreateAggregates creates (or truncates) the shard at path.
func CreateAggregates(path string) (*AggregateWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &AggregateWriter{f: f}, nil
}

func (w *AggregateWriter) Write(a Aggregate) error {
	w.rows = append(w.rows, a)
	return nil
}

// Close sorts, renders and flushes every buffered row, then closes the
// underlying file.
func (w *AggregateWriter) Close() error {
	sort.Slice(w.rows, func(i, j int) bool {
		if w.rows[i].Key.Year != w.rows[j].Key.Year {
			return w.rows[i].Key.Year < w.rows[j].Key.Year
		}
		return w.rows[i].Key.Market < w.rows[j].Key.Market
	})

	b := bufio.NewWriter(w.f)
	fmt.Fprintln(b, OutputHeader)
	for _, a := range w.rows {
		fmt.Fprintf(b, "%d,%s,%d,%s,%s,%s\n",
			a.Key.Year, a.Key.Market, a.Flights,
			renderMean(a.Scheduled), renderMean(a.Actual), renderMean(a.Air))
	}
	if err := b.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

func renderMean(m *float64) string {
	if m == nil {
		return Missing
	}
	return strconv.FormatFloat(*m, 'f', 2, 64)
}

// Output adapts AggregateWriter construction to the engine's output
// contract.
func Output() pipeline.OutputOpener[Aggregate] {
	return func(path string) (pipeline.OutputFormat[Aggregate], error) {
		return CreateAggregates(path)
	}
}
