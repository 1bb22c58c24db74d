package flightstats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/mysqlsink"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJobConfig(t *testing.T) {
	path := writeConfig(t, `{
  "version": "v1",
  "source": {"inputs": ["data/*.csv"], "delimiter": "|"},
  "transform": {"backend": "cluster", "workers": 8, "reducers": 4, "master_addr": "127.0.0.1:0"},
  "sink": {"output_dir": "out"}
}`)
	cfg, err := LoadJobConfig(path)
	require.NoError(t, err)
	require.Equal(t, JobVersionV1, cfg.Version)
	require.Equal(t, []string{"data/*.csv"}, cfg.Source.Inputs)
	require.Equal(t, "|", cfg.Source.Delimiter)
	require.Equal(t, "cluster", cfg.Transform.Backend)
	require.Equal(t, 8, cfg.Transform.Workers)
	require.Equal(t, "out", cfg.Sink.OutputDir)
	require.Nil(t, cfg.Sink.MySQL)
}

func TestLoadJobConfigWithMySQLSink(t *testing.T) {
	path := writeConfig(t, `{
  "version": "v1",
  "source": {"inputs": ["data/2004.csv"]},
  "transform": {},
  "sink": {
    "output_dir": "out",
    "mysql": {
      "db": {"User": "stats", "Password": "secret", "Database": "flights"},
      "table": "flight_markets",
      "replace": true
    }
  }
}`)
	cfg, err := LoadJobConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Sink.MySQL)
	require.Equal(t, "flight_markets", cfg.Sink.MySQL.Table)
	require.True(t, cfg.Sink.MySQL.Replace)
	require.Equal(t, "stats", cfg.Sink.MySQL.DB.User)
}

func TestLoadJobConfigRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `{
  "version": "v1",
  "source": {"inputs": ["a.csv"]},
  "sink": {"output_dir": "out"},
  "sinks": {}
}`)
	_, err := LoadJobConfig(path)
	require.Error(t, err)
}

func TestValidateJobConfig(t *testing.T) {
	valid := func() JobConfig {
		return JobConfig{
			Version: JobVersionV1,
			Source:  JobSourceConfig{Inputs: []string{"a.csv"}},
			Sink:    JobSinkConfig{OutputDir: "out"},
		}
	}
	require.NoError(t, ValidateJobConfig(valid()))

	cases := map[string]func(*JobConfig){
		"missing version":  func(c *JobConfig) { c.Version = "" },
		"wrong version":    func(c *JobConfig) { c.Version = "v2" },
		"no inputs":        func(c *JobConfig) { c.Source.Inputs = nil },
		"no output dir":    func(c *JobConfig) { c.Sink.OutputDir = "  " },
		"unknown backend":  func(c *JobConfig) { c.Transform.Backend = "spark" },
		"sink no table":    func(c *JobConfig) { c.Sink.MySQL = &mysqlsink.Config{DB: mysqlsink.DBConfig{User: "u", Database: "d"}} },
		"sink no db creds": func(c *JobConfig) { c.Sink.MySQL = &mysqlsink.Config{Table: "t"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			require.Error(t, ValidateJobConfig(cfg))
		})
	}

	cfg := valid()
	cfg.Transform.Backend = string(BackendCluster)
	cfg.Sink.MySQL = &mysqlsink.Config{
		DB:    mysqlsink.DBConfig{User: "stats", Database: "flights"},
		Table: "flight_markets",
	}
	require.NoError(t, ValidateJobConfig(cfg))
}
