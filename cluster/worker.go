package cluster

import (
	"context"
	"fmt"
	"net/rpc"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/pipeline"
)

// Job bundles the typed logic a worker executes. The same values drive the
// local backend, so moving a computation onto a cluster changes no job
// code.
type Job[R any, K comparable, V any, A any] struct {
	Mapper  pipeline.Mapper[R, K, V]
	Reducer pipeline.Reducer[K, V, A]
	Input   pipeline.InputOpener[R]
	Output  pipeline.OutputOpener[A]
}

func (j Job[R, K, V, A]) validate() error {
	if j.Mapper == nil || j.Reducer == nil || j.Input == nil || j.Output == nil {
		return fmt.Errorf("cluster: job needs a mapper, a reducer, an input opener and an output opener")
	}
	return nil
}

// Worker polls a master for tasks until the job completes. Workers are
// pure clients: they dial out and never listen.
type Worker[R any, K comparable, V any, A any] struct {
	masterAddr string
	job        Job[R, K, V, A]
	id         string
	client     *rpc.Client

	// PollInterval is the back-off between polls when no task is idle.
	PollInterval time.Duration
	// HeartbeatEvery is the gap between heartbeats.
	HeartbeatEvery time.Duration
}

// NewWorker prepares a worker for the master at addr.
func NewWorker[R any, K comparable, V any, A any](addr string, job Job[R, K, V, A]) *Worker[R, K, V, A] {
	return &Worker[R, K, V, A]{
		masterAddr:     addr,
		job:            job,
		PollInterval:   200 * time.Millisecond,
		HeartbeatEvery: 2 * time.Second,
	}
}

// Run registers with the master and polls for tasks until the master
// reports the job complete, the context ends, or the master goes away.
func (w *Worker[R, K, V, A]) Run(ctx context.Context) error {
	if err := w.job.validate(); err != nil {
		return err
	}
	client, err := dialMaster(ctx, w.masterAddr)
	if err != nil {
		return err
	}
	w.client = client
	defer client.Close()

	var reg RegisterReply
	if err := client.Call("Master.Register", &RegisterArgs{}, &reg); err != nil {
		return fmt.Errorf("worker: register: %w", err)
	}
	w.id = reg.WorkerID
	log.Infof("[Worker %s] Registered with %s", shortID(w.id), w.masterAddr)

	stopBeat := w.startHeartbeat(ctx)
	defer stopBeat()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var task GetTaskReply
		if err := client.Call("Master.GetTask", &GetTaskArgs{WorkerID: w.id}, &task); err != nil {
			return fmt.Errorf("worker: get task: %w", err)
		}
		if task.JobComplete {
			log.Infof("[Worker %s] Job complete", shortID(w.id))
			return nil
		}
		if task.Wait {
			select {
			case <-time.After(w.PollInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		done := TaskDoneArgs{WorkerID: w.id, TaskID: task.TaskID, Success: true}
		switch task.Type {
		case MapTask:
			records, pairs, err := w.runMap(task)
			if err != nil {
				done.Success = false
				done.Error = err.Error()
			}
			done.Records = records
			done.Pairs = pairs
		case ReduceTask:
			output, rows, err := w.runReduce(task)
			if err != nil {
				done.Success = false
				done.Error = err.Error()
			}
			done.Output = output
			done.Rows = rows
		default:
			done.Success = false
			done.Error = fmt.Sprintf("unknown task type %d", task.Type)
		}
		if err := client.Call("Master.TaskDone", &done, &TaskDoneReply{}); err != nil {
			return fmt.Errorf("worker: report task %d: %w", task.TaskID, err)
		}
	}
}

// dialMaster retries the dial so workers may start before their master.
func dialMaster(ctx context.Context, addr string) (*rpc.Client, error) {
	var lastErr error
	for i := 0; i < 50; i++ {
		client, err := rpc.Dial("tcp", addr)
		if err == nil {
			return client, nil
		}
		lastErr = err
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("worker: dial %s: %w", addr, lastErr)
}

func (w *Worker[R, K, V, A]) startHeartbeat(ctx context.Context) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(w.HeartbeatEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var reply HeartbeatReply
				if err := w.client.Call("Master.Heartbeat", &HeartbeatArgs{WorkerID: w.id}, &reply); err != nil {
					return
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() { close(stop) }
}

// runMap reads one input shard, maps every record, and writes one
// intermediate shard per reduce partition. Every partition gets a file
// even when empty so the reduce side can open all of them strictly.
func (w *Worker[R, K, V, A]) runMap(task GetTaskReply) (int, int, error) {
	log.Infof("[Worker %s] Start Map task %d: %s", shortID(w.id), task.TaskID, task.Input)
	in, err := w.job.Input(task.Input)
	if err != nil {
		return 0, 0, fmt.Errorf("map input %s: %w", task.Input, err)
	}
	defer in.Close()

	parts := make([][]pipeline.Pair[K, V], task.NReduce)
	records, pairs := 0, 0
	for {
		recs, err := in.Read(task.BatchSize)
		if err != nil {
			return records, pairs, fmt.Errorf("map input %s: %w", task.Input, err)
		}
		if len(recs) == 0 {
			break
		}
		records += len(recs)
		for _, rec := range recs {
			k, v, ok := w.job.Mapper.Map(rec)
			if !ok {
				continue
			}
			enc, err := pipeline.EncodeKey(k)
			if err != nil {
				return records, pairs, fmt.Errorf("encode key: %w", err)
			}
			r := pipeline.PartitionFor(enc, task.NReduce)
			parts[r] = append(parts[r], pipeline.Pair[K, V]{Key: k, Value: v})
			pairs++
		}
	}
	if s, ok := in.(interface{ Skipped() int }); ok && s.Skipped() > 0 {
		log.Tracef("[Worker %s] %s: skipped %d unparseable line(s)", shortID(w.id), task.Input, s.Skipped())
	}

	for r, part := range parts {
		if err := writeIntermediate(task.InterDir, task.TaskID, r, part); err != nil {
			return records, pairs, err
		}
	}
	log.Infof("[Worker %s] Finish Map task %d: %d record(s), %d pair(s)", shortID(w.id), task.TaskID, records, pairs)
	return records, pairs, nil
}

func writeIntermediate[K comparable, V any](dir string, mapID, partition int, pairs []pipeline.Pair[K, V]) error {
	path := intermediatePath(dir, mapID, partition)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pipeline.EncodePairs(f, pairs); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// intermediatePath names the shard map task m writes for reduce partition r.
func intermediatePath(dir string, mapID, partition int) string {
	return filepath.Join(dir, fmt.Sprintf("imd-%d-%d.json", mapID, partition))
}

// runReduce gathers the partition's intermediate shards from every map
// task, groups them, reduces each group and writes one output shard.
func (w *Worker[R, K, V, A]) runReduce(task GetTaskReply) (string, int, error) {
	log.Infof("[Worker %s] Start Reduce task %d", shortID(w.id), task.TaskID)
	grouped := pipeline.NewGrouper[K, V]()
	for m := 0; m < task.NMap; m++ {
		path := intermediatePath(task.InterDir, m, task.Partition)
		f, err := os.Open(path)
		if err != nil {
			return "", 0, fmt.Errorf("reduce input: %w", err)
		}
		pairs, err := pipeline.DecodePairs[K, V](f)
		f.Close()
		if err != nil {
			return "", 0, fmt.Errorf("reduce input %s: %w", path, err)
		}
		for _, p := range pairs {
			grouped.Add(p.Key, p.Value)
		}
	}

	path := filepath.Join(task.OutputDir, fmt.Sprintf("part-%05d.csv", task.Partition))
	out, err := w.job.Output(path)
	if err != nil {
		return "", 0, fmt.Errorf("sink %s: %w", path, err)
	}
	for k, vs := range grouped.Groups() {
		if err := out.Write(w.job.Reducer.Reduce(k, vs)); err != nil {
			out.Close()
			return "", 0, fmt.Errorf("sink %s: %w", path, err)
		}
	}
	if err := out.Close(); err != nil {
		return "", 0, fmt.Errorf("sink %s: %w", path, err)
	}
	rows := grouped.Len()
	log.Infof("[Worker %s] Finish Reduce task %d: %d row(s) -> %s", shortID(w.id), task.TaskID, rows, path)
	return path, rows, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
