// Package results loads finished aggregate shards into dataframes for
// inspection and export.
package results

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

var shardTypes = map[string]series.Type{
	"year":      series.Int,
	"market":    series.String,
	"flights":   series.Int,
	"scheduled": series.Float,
	"actual":    series.Float,
	"in_air":    series.Float,
}

// Load reads every aggregate shard matching glob into one dataframe,
// sorted by year then market. Missing means come back as NA elements.
// Shards holding only the header line are skipped: a reduce partition
// that saw no keys still writes one.
func Load(glob string) (dataframe.DataFrame, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(files) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no aggregate shards matched: %s", glob)
	}
	sort.Strings(files)

	var (
		out    dataframe.DataFrame
		loaded bool
	)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if !hasDataRows(data) {
			continue
		}
		df := dataframe.ReadCSV(bytes.NewReader(data),
			dataframe.HasHeader(true),
			dataframe.WithTypes(shardTypes),
		)
		if df.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("load %s: %w", path, df.Err)
		}
		if !loaded {
			out = df
			loaded = true
			continue
		}
		out = out.RBind(df)
		if out.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("load %s: %w", path, out.Err)
		}
	}
	if !loaded {
		return dataframe.DataFrame{}, fmt.Errorf("aggregate shards matching %s hold no rows", glob)
	}

	out = out.Arrange(dataframe.Sort("year"), dataframe.Sort("market"))
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// hasDataRows reports whether anything follows the header line.
func hasDataRows(data []byte) bool {
	sawHeader := false
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if sawHeader {
			return true
		}
		sawHeader = true
	}
	return false
}

// Preview returns the first n rows. Zero or negative n, or n beyond the
// row count, returns the whole frame.
func Preview(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n <= 0 || n >= df.Nrow() {
		return df
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx)
}

// WriteXLSX saves the aggregates as one worksheet, missing means written
// as the NA marker so they survive the float round trip.
func WriteXLSX(df dataframe.DataFrame, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	names := df.Names()
	for i, name := range names {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row := 0; row < df.Nrow(); row++ {
		for col, name := range names {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			elem := df.Col(name).Elem(row)
			if elem.IsNA() {
				f.SetCellValue(sheet, cell, flights.Missing)
				continue
			}
			f.SetCellValue(sheet, cell, elem.Val())
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
