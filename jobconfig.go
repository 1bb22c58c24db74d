package flightstats

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/mysqlsink"
)

const JobVersionV1 = "v1"

// JobConfig describes a source -> transform -> sink run as a versioned
// JSON document.
type JobConfig struct {
	Version   string             `json:"version"`
	Source    JobSourceConfig    `json:"source"`
	Transform JobTransformConfig `json:"transform"`
	Sink      JobSinkConfig      `json:"sink"`
}

type JobSourceConfig struct {
	// Inputs are shard paths or glob patterns.
	Inputs []string `json:"inputs"`
	// Delimiter separates fields in the input, "," when empty.
	Delimiter string `json:"delimiter"`
}

type JobTransformConfig struct {
	Backend    string `json:"backend"`
	Workers    int    `json:"workers"`
	Reducers   int    `json:"reducers"`
	BatchSize  int    `json:"batch_size"`
	MasterAddr string `json:"master_addr"`
}

type JobSinkConfig struct {
	// OutputDir receives the aggregate shards.
	OutputDir string `json:"output_dir"`
	// MySQL, when present, loads the shards into a table after the run.
	MySQL *mysqlsink.Config `json:"mysql"`
}

// ValidateJobConfig checks the v1 job schema and required fields.
func ValidateJobConfig(cfg JobConfig) error {
	if strings.TrimSpace(cfg.Version) != JobVersionV1 {
		return fmt.Errorf("unsupported version: %q (expected %q)", cfg.Version, JobVersionV1)
	}
	if len(cfg.Source.Inputs) == 0 {
		return fmt.Errorf("source.inputs is required")
	}
	if strings.TrimSpace(cfg.Sink.OutputDir) == "" {
		return fmt.Errorf("sink.output_dir is required")
	}
	switch Backend(cfg.Transform.Backend) {
	case "", BackendLocal, BackendCluster:
	default:
		return fmt.Errorf("unsupported transform.backend: %q", cfg.Transform.Backend)
	}
	if cfg.Sink.MySQL != nil {
		if cfg.Sink.MySQL.DB.User == "" || cfg.Sink.MySQL.DB.Database == "" {
			return fmt.Errorf("sink.mysql.db user and database are required")
		}
		if strings.TrimSpace(cfg.Sink.MySQL.Table) == "" {
			return fmt.Errorf("sink.mysql.table is required")
		}
	}
	return nil
}

// LoadJobConfig reads and validates a JSON job config. Unknown fields are
// rejected so typos fail loudly instead of silently running defaults.
func LoadJobConfig(path string) (JobConfig, error) {
	var cfg JobConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ValidateJobConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
