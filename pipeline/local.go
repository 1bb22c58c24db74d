package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// LocalConfig tunes the in-process backend.
type LocalConfig struct {
	// Workers is the size of the mapper pool.
	Workers int
	// BatchSize is how many records each InputFormat.Read call asks for.
	BatchSize int
}

func (c *LocalConfig) withDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 512
	}
}

// Stats reports what one local run did.
type Stats struct {
	Records int
	Pairs   int
	Groups  int

	MapDuration     time.Duration
	ShuffleDuration time.Duration
	ReduceDuration  time.Duration
}

// Local runs map, shuffle and reduce inside the calling process. Mapping is
// spread over a worker pool where each worker groups its own emissions; the
// per-worker groups are merged once every mapper has finished, which is the
// shuffle barrier, and only then does the reducer see its first group.
type Local[R any, K comparable, V any, A any] struct {
	Mapper  Mapper[R, K, V]
	Reducer Reducer[K, V, A]
	Open    InputOpener[R]
	Config  LocalConfig
}

// Run executes the job over the given input shards and returns one
// aggregate per distinct key.
func (l Local[R, K, V, A]) Run(ctx context.Context, inputs []string) (map[K]A, Stats, error) {
	var stats Stats
	if l.Mapper == nil || l.Reducer == nil || l.Open == nil {
		return nil, stats, fmt.Errorf("local: mapper, reducer and input opener are required")
	}
	cfg := l.Config
	cfg.withDefaults()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Infof("[Local] Start Map: %d workers over %d input shard(s)", cfg.Workers, len(inputs))
	mapStart := time.Now()

	jobs := make(chan []R)
	partials := make(chan *Grouper[K, V], cfg.Workers)
	errc := make(chan error, 1)
	var records int64

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			local := NewGrouper[K, V]()
			for recs := range jobs {
				for _, rec := range recs {
					k, v, ok := l.Mapper.Map(rec)
					if !ok {
						continue
					}
					local.Add(k, v)
				}
			}
			partials <- local
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range inputs {
			if err := l.feed(ctx, path, cfg.BatchSize, jobs, &records); err != nil {
				select {
				case errc <- err:
				default:
				}
				cancel()
				return
			}
		}
	}()

	wg.Wait()
	close(partials)
	stats.MapDuration = time.Since(mapStart)

	select {
	case err := <-errc:
		return nil, stats, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	log.Trace("[Local] Start Shuffle")
	shuffleStart := time.Now()
	grouped := NewGrouper[K, V]()
	for part := range partials {
		grouped.Merge(part)
	}
	stats.ShuffleDuration = time.Since(shuffleStart)
	stats.Records = int(atomic.LoadInt64(&records))
	stats.Pairs = grouped.Pairs()
	stats.Groups = grouped.Len()

	log.Infof("[Local] Start Reduce: %d group(s) from %d pair(s)", stats.Groups, stats.Pairs)
	reduceStart := time.Now()
	out := make(map[K]A, grouped.Len())
	for k, vs := range grouped.Groups() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		out[k] = l.Reducer.Reduce(k, vs)
	}
	stats.ReduceDuration = time.Since(reduceStart)
	log.Info("[Local] Finish Reduce")

	return out, stats, nil
}

func (l Local[R, K, V, A]) feed(ctx context.Context, path string, batch int, jobs chan<- []R, records *int64) error {
	in, err := l.Open(path)
	if err != nil {
		return fmt.Errorf("map input %s: %w", path, err)
	}
	defer in.Close()

	for {
		recs, err := in.Read(batch)
		if err != nil {
			return fmt.Errorf("map input %s: %w", path, err)
		}
		if len(recs) == 0 {
			if s, ok := in.(interface{ Skipped() int }); ok && s.Skipped() > 0 {
				log.Tracef("[Local] %s: skipped %d unparseable line(s)", path, s.Skipped())
			}
			return nil
		}
		atomic.AddInt64(records, int64(len(recs)))
		select {
		case jobs <- recs:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
