package flights

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func row(overrides map[int]string) string {
	fields := make([]string, FieldCount)
	base := map[int]string{
		0: "2004", 1: "1", 2: "15", 3: "4",
		4: "628", 5: "630", 6: "1158", 7: "1143",
		8: "AA", 9: "1", 10: "N123",
		11: "345", 12: "330", 13: "300",
		14: "15", 15: "-2", 16: "JFK", 17: "LAX", 18: "2475",
		19: "9", 20: "21", 21: "0", 22: "", 23: "0",
		24: "NA", 25: "NA", 26: "NA", 27: "NA", 28: "NA",
	}
	for i := range fields {
		fields[i] = base[i]
	}
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, ",")
}

func writeTable(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2004.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestTableReaderBatches(t *testing.T) {
	path := writeTable(t,
		strings.Join(Columns, ","),
		row(nil),
		row(map[int]string{16: "LAX", 17: "JFK"}),
		row(map[int]string{0: "2005"}),
	)

	r, err := OpenTable(path, ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Read(2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, headerYear, first[0].Year)
	require.Equal(t, "JFK", first[1].Origin)

	rest, err := r.Read(10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, "LAX", rest[0].Origin)
	require.Equal(t, "2005", rest[1].Year)

	done, err := r.Read(10)
	require.NoError(t, err)
	require.Empty(t, done)
}

func TestTableReaderSkipsUnbindableLines(t *testing.T) {
	path := writeTable(t,
		row(nil),
		"too,short,line",
		"",
		row(map[int]string{0: "2005"}),
	)

	r, err := OpenTable(path, ReaderConfig{})
	require.NoError(t, err)
	defer r.Close()

	recs, err := r.Read(100)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, 1, r.Skipped())
}

func TestTableReaderCustomDelimiter(t *testing.T) {
	line := strings.ReplaceAll(row(nil), ",", "|")
	path := writeTable(t, line)

	r, err := OpenTable(path, ReaderConfig{Delimiter: "|"})
	require.NoError(t, err)
	defer r.Close()

	recs, err := r.Read(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "LAX", recs[0].Dest)
}
