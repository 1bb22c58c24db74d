package flightstats

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/mysqlsink"
)

// JobBenchmark captures stage durations of a config-driven run.
type JobBenchmark struct {
	TransformDuration time.Duration
	SinkDuration      time.Duration
	TotalDuration     time.Duration
}

// RunJobConfig executes a job config end to end: run the transform over
// the configured inputs, then load the aggregate shards into MySQL when a
// sink is configured.
func RunJobConfig(ctx context.Context, cfg JobConfig) (*Handle, JobBenchmark, error) {
	var bench JobBenchmark
	started := time.Now()

	if err := ValidateJobConfig(cfg); err != nil {
		return nil, bench, err
	}

	spec := MarketJob(cfg.Source.Inputs, cfg.Sink.OutputDir, flights.ReaderConfig{Delimiter: cfg.Source.Delimiter})
	run := Config{
		Backend:    Backend(cfg.Transform.Backend),
		Workers:    cfg.Transform.Workers,
		Reducers:   cfg.Transform.Reducers,
		BatchSize:  cfg.Transform.BatchSize,
		MasterAddr: cfg.Transform.MasterAddr,
	}

	sTransform := time.Now()
	h, err := Run(ctx, spec, run)
	if err != nil {
		return nil, bench, err
	}
	bench.TransformDuration = time.Since(sTransform)

	if cfg.Sink.MySQL != nil {
		sSink := time.Now()
		db, err := mysqlsink.Open(ctx, cfg.Sink.MySQL.DB)
		if err != nil {
			return h, bench, err
		}
		err = mysqlsink.NewSink(*cfg.Sink.MySQL).Import(ctx, db, h.OutputGlob)
		db.Close()
		if err != nil {
			return h, bench, err
		}
		bench.SinkDuration = time.Since(sSink)
		log.Infof("[Run %s] Sink done in %s", shortRunID(h.RunID), bench.SinkDuration)
	}

	bench.TotalDuration = time.Since(started)
	return h, bench, nil
}
