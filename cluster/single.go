package cluster

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// SingleProcessConfig runs master and workers inside one process over
// loopback RPC, exercising the same code path as a real deployment.
type SingleProcessConfig struct {
	Addr              string
	Workers           int
	Reducers          int
	BatchSize         int
	OutputDir         string
	KeepIntermediates bool
}

func (c *SingleProcessConfig) withDefaults() {
	if c.Addr == "" {
		c.Addr = ":10000"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// RunSingleProcess executes one job with an in-process master and worker
// pool. Worker errors are logged, not returned: the master re-queues
// their tasks and fails the job itself once a task runs out of retries.
func RunSingleProcess[R any, K comparable, V any, A any](ctx context.Context, cfg SingleProcessConfig, inputs []string, job Job[R, K, V, A]) (*Result, error) {
	cfg.withDefaults()
	if err := job.validate(); err != nil {
		return nil, err
	}

	master, err := StartMaster(MasterConfig{
		Addr:              cfg.Addr,
		Inputs:            inputs,
		Reducers:          cfg.Reducers,
		BatchSize:         cfg.BatchSize,
		OutputDir:         cfg.OutputDir,
		KeepIntermediates: cfg.KeepIntermediates,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Cluster] Start single process run: %d worker(s) against %s", cfg.Workers, master.Addr())
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := NewWorker(master.Addr(), job).Run(ctx); err != nil {
				log.Errorf("[Cluster] Worker exited: %v", err)
			}
		}()
	}

	res, err := master.Wait(ctx)
	if err != nil {
		master.Stop()
		wg.Wait()
		return nil, err
	}
	wg.Wait()
	master.Stop()
	return res, nil
}
