// Package flightstats computes flight time statistics from delimited
// flight records with a map/shuffle/reduce engine that runs either in
// process or on a master/worker cluster.
package flightstats

import (
	"time"

	"github.com/google/uuid"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/pipeline"
)

// Backend selects where a job runs.
type Backend string

const (
	// BackendLocal runs the job inside the calling process.
	BackendLocal Backend = "local"
	// BackendCluster runs the job with an in-process master and worker
	// pool connected over loopback RPC.
	BackendCluster Backend = "cluster"
)

// Spec is one job: where records come from, the mapper and reducer to
// apply, and where aggregates go.
type Spec[R any, K comparable, V any, A any] struct {
	// Inputs are input shard paths. Glob patterns are expanded; a
	// pattern that matches nothing fails the run before it starts.
	Inputs []string
	// OutputDir receives the part-<n>.csv output shards.
	OutputDir string

	Mapper  pipeline.Mapper[R, K, V]
	Reducer pipeline.Reducer[K, V, A]
	Input   pipeline.InputOpener[R]
	Output  pipeline.OutputOpener[A]
}

// Config tunes how a Spec runs. The zero value runs locally with four
// workers and a single reducer.
type Config struct {
	Backend   Backend
	Workers   int
	Reducers  int
	BatchSize int
	// MasterAddr is the cluster backend's listen address. ":0" picks a
	// free port.
	MasterAddr string
	// KeepIntermediates leaves the cluster backend's intermediate
	// directory in place for inspection.
	KeepIntermediates bool
}

func (c *Config) withDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Reducers <= 0 {
		c.Reducers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 512
	}
	if c.MasterAddr == "" {
		c.MasterAddr = ":10000"
	}
}

// Timings captures per-stage durations of one run. The cluster backend
// folds its shuffle into the reduce stage, so Shuffle stays zero there.
type Timings struct {
	Map     time.Duration
	Shuffle time.Duration
	Reduce  time.Duration
	Total   time.Duration
}

// Handle describes a finished run.
type Handle struct {
	RunID   uuid.UUID
	Backend Backend

	// Outputs are the written shard paths, sorted. OutputGlob matches
	// exactly these paths, for downstream loaders.
	Outputs    []string
	OutputGlob string

	Records int
	Pairs   int
	Groups  int
	Timings Timings
}
