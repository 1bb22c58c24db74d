package flightstats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/cluster"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/pipeline"
)

// outputPattern matches the output shards a run writes into its output
// directory. Stale shards matching it are removed before a run starts.
const outputPattern = "part-*.csv"

// Run executes one job and blocks until every output shard is written.
// Output shards of a previous run in the same directory are removed
// first, so a directory never mixes shards from two runs.
func Run[R any, K comparable, V any, A any](ctx context.Context, spec Spec[R, K, V, A], cfg Config) (*Handle, error) {
	cfg.withDefaults()
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	inputs, err := expandInputs(spec.Inputs)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		RunID:      uuid.New(),
		Backend:    cfg.Backend,
		OutputGlob: filepath.Join(spec.OutputDir, outputPattern),
	}
	if err := os.MkdirAll(spec.OutputDir, 0o755); err != nil {
		return nil, err
	}
	cleanupOutputs(h.OutputGlob)

	log.Infof("[Run %s] Start: backend=%s, %d input shard(s) -> %s", shortRunID(h.RunID), cfg.Backend, len(inputs), spec.OutputDir)
	started := time.Now()

	switch cfg.Backend {
	case BackendLocal:
		err = runLocal(ctx, spec, cfg, inputs, h)
	case BackendCluster:
		err = runCluster(ctx, spec, cfg, inputs, h)
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	h.Timings.Total = time.Since(started)

	log.Infof("[Run %s] Finish: %d record(s) -> %d group(s) in %s", shortRunID(h.RunID), h.Records, h.Groups, h.Timings.Total)
	return h, nil
}

func validateSpec[R any, K comparable, V any, A any](spec Spec[R, K, V, A]) error {
	if spec.Mapper == nil || spec.Reducer == nil || spec.Input == nil || spec.Output == nil {
		return fmt.Errorf("job needs a mapper, a reducer, an input opener and an output opener")
	}
	if spec.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	return nil
}

// expandInputs expands glob patterns into concrete shard paths. A pattern
// matching nothing is an error: a job with missing inputs should fail
// before it starts, not write an empty aggregate.
func expandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no input shards")
	}
	var inputs []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matched nothing", pat)
		}
		sort.Strings(matches)
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func cleanupOutputs(glob string) {
	if outs, err := filepath.Glob(glob); err == nil {
		for _, out := range outs {
			_ = os.Remove(out)
		}
	}
}

func runLocal[R any, K comparable, V any, A any](ctx context.Context, spec Spec[R, K, V, A], cfg Config, inputs []string, h *Handle) error {
	engine := pipeline.Local[R, K, V, A]{
		Mapper:  spec.Mapper,
		Reducer: spec.Reducer,
		Open:    spec.Input,
		Config:  pipeline.LocalConfig{Workers: cfg.Workers, BatchSize: cfg.BatchSize},
	}
	aggs, stats, err := engine.Run(ctx, inputs)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	path := filepath.Join(spec.OutputDir, "part-00000.csv")
	out, err := spec.Output(path)
	if err != nil {
		return fmt.Errorf("sink %s: %w", path, err)
	}
	for _, agg := range aggs {
		if err := out.Write(agg); err != nil {
			out.Close()
			return fmt.Errorf("sink %s: %w", path, err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("sink %s: %w", path, err)
	}

	h.Outputs = []string{path}
	h.Records = stats.Records
	h.Pairs = stats.Pairs
	h.Groups = stats.Groups
	h.Timings.Map = stats.MapDuration
	h.Timings.Shuffle = stats.ShuffleDuration
	h.Timings.Reduce = stats.ReduceDuration
	return nil
}

func runCluster[R any, K comparable, V any, A any](ctx context.Context, spec Spec[R, K, V, A], cfg Config, inputs []string, h *Handle) error {
	res, err := cluster.RunSingleProcess(ctx, cluster.SingleProcessConfig{
		Addr:              cfg.MasterAddr,
		Workers:           cfg.Workers,
		Reducers:          cfg.Reducers,
		BatchSize:         cfg.BatchSize,
		OutputDir:         spec.OutputDir,
		KeepIntermediates: cfg.KeepIntermediates,
	}, inputs, cluster.Job[R, K, V, A]{
		Mapper:  spec.Mapper,
		Reducer: spec.Reducer,
		Input:   spec.Input,
		Output:  spec.Output,
	})
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	h.Outputs = res.Outputs
	h.Records = res.Records
	h.Pairs = res.Pairs
	h.Groups = res.Rows
	h.Timings.Map = res.MapDuration
	h.Timings.Reduce = res.ReduceDuration
	return nil
}

func shortRunID(id uuid.UUID) string {
	return id.String()[:8]
}
