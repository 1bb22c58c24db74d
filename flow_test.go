package flightstats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunJobConfigLocal(t *testing.T) {
	dir := t.TempDir()
	in := writeFlights(t, filepath.Join(dir, "2004.csv"),
		flightRow("2004", "JFK", "LAX", "330", "350", "290", "0", "0"),
		flightRow("2004", "LAX", "JFK", "330", "330", "300", "0", "0"),
	)
	outDir := filepath.Join(dir, "out")

	cfg := JobConfig{
		Version:   JobVersionV1,
		Source:    JobSourceConfig{Inputs: []string{in}},
		Transform: JobTransformConfig{Workers: 2},
		Sink:      JobSinkConfig{OutputDir: outDir},
	}

	h, bench, err := RunJobConfig(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, h.Groups)
	require.Positive(t, bench.TransformDuration)
	require.Positive(t, bench.TotalDuration)
	require.Zero(t, bench.SinkDuration)

	data, err := os.ReadFile(h.Outputs[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "2004,JFK-LAX,2,330.00,340.00,295.00")
}

func TestRunJobConfigRejectsInvalid(t *testing.T) {
	_, _, err := RunJobConfig(context.Background(), JobConfig{Version: "v2"})
	require.Error(t, err)
}
