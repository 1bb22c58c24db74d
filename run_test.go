package flightstats

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

// flightRow builds one 29-field record line. Fields the statistics never
// touch stay "0".
func flightRow(year, origin, dest, sched, actual, air, cancelled, diverted string) string {
	fields := make([]string, flights.FieldCount)
	for i := range fields {
		fields[i] = "0"
	}
	fields[0] = year
	fields[11] = actual
	fields[12] = sched
	fields[13] = air
	fields[16] = origin
	fields[17] = dest
	fields[21] = cancelled
	fields[23] = diverted
	return strings.Join(fields, ",")
}

func writeFlights(t *testing.T, path string, rows ...string) string {
	t.Helper()
	all := append([]string{strings.Join(flights.Columns, ",")}, rows...)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(all, "\n")+"\n"), 0o644))
	return path
}

func readDataRows(t *testing.T, paths []string) []string {
	t.Helper()
	var rows []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		for _, ln := range strings.Split(string(data), "\n") {
			if ln == "" || strings.HasPrefix(ln, "year,") {
				continue
			}
			rows = append(rows, ln)
		}
	}
	sort.Strings(rows)
	return rows
}

func TestRunLocalComputesMarketMeans(t *testing.T) {
	dir := t.TempDir()
	in := writeFlights(t, filepath.Join(dir, "2004.csv"),
		flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
		flightRow("2004", "LAX", "JFK", "330", "330", "300", "0", "0"),
		flightRow("2004", "JFK", "LAX", "330", "NA", "NA", "1", "0"),
	)
	outDir := filepath.Join(dir, "out")

	h, err := Run(context.Background(), MarketJob([]string{in}, outDir, flights.ReaderConfig{}), Config{})
	require.NoError(t, err)

	require.Equal(t, BackendLocal, h.Backend)
	require.Equal(t, 4, h.Records) // header and cancelled rows count as records
	require.Equal(t, 2, h.Pairs)
	require.Equal(t, 1, h.Groups)
	require.Len(t, h.Outputs, 1)

	data, err := os.ReadFile(h.Outputs[0])
	require.NoError(t, err)
	require.Equal(t,
		"year,market,flights,scheduled,actual,in_air\n2004,JFK-LAX,2,330.00,340.00,295.00\n",
		string(data))

	matched, err := filepath.Glob(h.OutputGlob)
	require.NoError(t, err)
	require.Equal(t, h.Outputs, matched)
}

func TestRunClusterBackendMatchesLocal(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		writeFlights(t, filepath.Join(dir, "1999.csv"),
			flightRow("1999", "DEN", "ORD", "120", "NA", "100", "0", "0"),
			flightRow("1999", "ORD", "DEN", "120", "130", "105", "0", "0"),
		),
		writeFlights(t, filepath.Join(dir, "2004.csv"),
			flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
			flightRow("2004", "LAX", "JFK", "330", "330", "300", "0", "0"),
		),
	}

	localOut := filepath.Join(dir, "out-local")
	localH, err := Run(context.Background(), MarketJob(inputs, localOut, flights.ReaderConfig{}), Config{})
	require.NoError(t, err)

	clusterOut := filepath.Join(dir, "out-cluster")
	clusterH, err := Run(context.Background(), MarketJob(inputs, clusterOut, flights.ReaderConfig{}), Config{
		Backend:    BackendCluster,
		Workers:    3,
		Reducers:   2,
		MasterAddr: "127.0.0.1:0",
	})
	require.NoError(t, err)

	require.Equal(t, BackendCluster, clusterH.Backend)
	require.Len(t, clusterH.Outputs, 2)
	require.Equal(t, localH.Records, clusterH.Records)
	require.Equal(t, localH.Pairs, clusterH.Pairs)
	require.Equal(t, localH.Groups, clusterH.Groups)
	require.Equal(t, readDataRows(t, localH.Outputs), readDataRows(t, clusterH.Outputs))
}

func TestRunRemovesStaleOutputShards(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	stale := filepath.Join(outDir, "part-99999.csv")
	require.NoError(t, os.WriteFile(stale, []byte("leftover\n"), 0o644))
	unrelated := filepath.Join(outDir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep\n"), 0o644))

	in := writeFlights(t, filepath.Join(dir, "2004.csv"),
		flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
	)

	h, err := Run(context.Background(), MarketJob([]string{in}, outDir, flights.ReaderConfig{}), Config{})
	require.NoError(t, err)
	require.Len(t, h.Outputs, 1)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(unrelated)
	require.NoError(t, err)
}

func TestRunExpandsInputGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFlights(t, filepath.Join(dir, "a.csv"),
		flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
	)
	writeFlights(t, filepath.Join(dir, "b.csv"),
		flightRow("2004", "LAX", "JFK", "330", "330", "300", "0", "0"),
	)

	h, err := Run(context.Background(),
		MarketJob([]string{filepath.Join(dir, "*.csv")}, filepath.Join(dir, "out"), flights.ReaderConfig{}),
		Config{})
	require.NoError(t, err)
	require.Equal(t, 2, h.Pairs)
	require.Equal(t, 1, h.Groups)
}

func TestRunFailsWhenInputsMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(),
		MarketJob([]string{filepath.Join(dir, "*.csv")}, filepath.Join(dir, "out"), flights.ReaderConfig{}),
		Config{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "matched nothing")
}

func TestRunRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	in := writeFlights(t, filepath.Join(dir, "2004.csv"),
		flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
	)
	_, err := Run(context.Background(),
		MarketJob([]string{in}, filepath.Join(dir, "out"), flights.ReaderConfig{}),
		Config{Backend: "spark"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported backend")
}
