package cluster

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MasterConfig describes one cluster job from the master's side.
type MasterConfig struct {
	// Addr is the TCP listen address, e.g. ":10000". ":0" picks a free
	// port, which Addr() reports after StartMaster returns.
	Addr string
	// Inputs are the input shard paths. Each becomes one map task.
	Inputs []string
	// Reducers is the number of reduce partitions and output shards.
	Reducers int
	// BatchSize is handed to workers for their input reads.
	BatchSize int
	// OutputDir receives the part-<n>.csv output shards.
	OutputDir string
	// InterDir holds intermediate shards. Empty means a fresh directory
	// under the system temp dir, removed when the master stops.
	InterDir string
	// KeepIntermediates leaves InterDir in place after the job.
	KeepIntermediates bool
	// TaskTimeout is how long a task may run before it is re-queued.
	TaskTimeout time.Duration
	// HeartbeatTimeout is how long a worker may stay silent before its
	// tasks are re-queued.
	HeartbeatTimeout time.Duration
}

func (c *MasterConfig) withDefaults() {
	if c.Addr == "" {
		c.Addr = ":10000"
	}
	if c.Reducers <= 0 {
		c.Reducers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 512
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = 10 * time.Second
	}
}

// Result summarizes a finished cluster job.
type Result struct {
	Outputs []string
	Records int
	Pairs   int
	Rows    int

	MapDuration    time.Duration
	ReduceDuration time.Duration
}

type workerInfo struct {
	lastSeen time.Time
	active   bool
}

// Master owns a job. It serves tasks to polling workers, watches their
// heartbeats, moves the job from its map phase to its reduce phase, and
// fails fast when a task runs out of retries.
type Master struct {
	cfg      MasterConfig
	interDir string
	ownInter bool

	lis     net.Listener
	srv     *rpc.Server
	tracker *tracker

	mu            sync.Mutex
	workers       map[string]*workerInfo
	conns         map[net.Conn]struct{}
	outputs       []string
	records       int
	pairs         int
	rows          int
	phaseAt       time.Time
	reduceStarted bool
	result        Result
	failure       error
	finished      bool

	done     chan struct{}
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// StartMaster listens on cfg.Addr and begins serving the job.
func StartMaster(cfg MasterConfig) (*Master, error) {
	cfg.withDefaults()
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("master: no input shards")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("master: output dir is required")
	}

	m := &Master{
		cfg:      cfg,
		interDir: cfg.InterDir,
		tracker:  newTracker(cfg.Reducers, cfg.TaskTimeout),
		workers:  make(map[string]*workerInfo),
		conns:    make(map[net.Conn]struct{}),
		phaseAt:  time.Now(),
		done:     make(chan struct{}),
		shutdown: make(chan struct{}),
	}
	if m.interDir == "" {
		m.interDir = filepath.Join(os.TempDir(), "flightmr-"+uuid.New().String())
		m.ownInter = true
	}
	if err := os.MkdirAll(m.interDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	m.tracker.initMapTasks(cfg.Inputs)

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("master: listen %s: %w", cfg.Addr, err)
	}
	m.lis = lis
	m.srv = rpc.NewServer()
	if err := m.srv.RegisterName("Master", &masterAPI{m}); err != nil {
		lis.Close()
		return nil, err
	}

	log.Infof("[Master] Listening on %s: %d map task(s), %d reducer(s)", lis.Addr(), len(cfg.Inputs), cfg.Reducers)

	m.wg.Add(2)
	go m.acceptLoop()
	go m.superviseLoop()
	return m, nil
}

// Addr reports the actual listen address, useful with ":0".
func (m *Master) Addr() string { return m.lis.Addr().String() }

// Wait blocks until the job completes or fails.
func (m *Master) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-m.done:
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.failure != nil {
			return nil, m.failure
		}
		res := m.result
		return &res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop closes the listener and every open worker connection, then removes
// the intermediate directory unless it is kept. Stop is idempotent.
func (m *Master) Stop() {
	m.stopOnce.Do(func() {
		close(m.shutdown)
		m.lis.Close()
		m.mu.Lock()
		for conn := range m.conns {
			conn.Close()
		}
		m.mu.Unlock()
		m.wg.Wait()
		if m.ownInter && !m.cfg.KeepIntermediates {
			if err := os.RemoveAll(m.interDir); err != nil {
				log.Errorf("[Master] Cleanup %s: %v", m.interDir, err)
			}
		}
	})
}

func (m *Master) acceptLoop() {
	defer m.wg.Done()
	for {
		conn, err := m.lis.Accept()
		if err != nil {
			select {
			case <-m.shutdown:
				return
			default:
				log.Errorf("[Master] Accept: %v", err)
				return
			}
		}
		m.mu.Lock()
		m.conns[conn] = struct{}{}
		m.mu.Unlock()
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.srv.ServeConn(conn)
			m.mu.Lock()
			delete(m.conns, conn)
			m.mu.Unlock()
		}()
	}
}

func (m *Master) superviseLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.supervise()
		case <-m.done:
			return
		case <-m.shutdown:
			return
		}
	}
}

func (m *Master) supervise() {
	m.checkWorkers()
	requeued, err := m.tracker.reclaimStalled()
	if err != nil {
		m.fail(err)
		return
	}
	if requeued > 0 {
		log.Warnf("[Master] Re-queued %d stalled task(s)", requeued)
	}
	m.advancePhase()
}

func (m *Master) checkWorkers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, w := range m.workers {
		if w.active && now.Sub(w.lastSeen) > m.cfg.HeartbeatTimeout {
			w.active = false
			n := m.tracker.reclaimWorker(id)
			log.Warnf("[Master] Worker %s lost, re-queued %d task(s)", shortID(id), n)
		}
	}
}

// advancePhase moves the job forward once the tracker has no unfinished
// tasks: map phase done starts the reduce phase, reduce phase done
// completes the job.
func (m *Master) advancePhase() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished || !m.tracker.phaseDone() {
		return
	}
	if !m.reduceStarted {
		m.reduceStarted = true
		m.result.MapDuration = time.Since(m.phaseAt)
		m.phaseAt = time.Now()
		m.tracker.startReducePhase()
		log.Infof("[Master] Map phase done in %s, starting %d reduce task(s)", m.result.MapDuration, m.cfg.Reducers)
		return
	}
	m.finished = true
	m.result.ReduceDuration = time.Since(m.phaseAt)
	m.result.Outputs = append([]string(nil), m.outputs...)
	sort.Strings(m.result.Outputs)
	m.result.Records = m.records
	m.result.Pairs = m.pairs
	m.result.Rows = m.rows
	close(m.done)
	log.Infof("[Master] Job complete: %d record(s), %d pair(s), %d row(s) in %d output shard(s)",
		m.records, m.pairs, m.rows, len(m.result.Outputs))
}

func (m *Master) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished {
		return
	}
	m.finished = true
	m.failure = err
	close(m.done)
	log.Errorf("[Master] Job failed: %v", err)
}

func (m *Master) touch(workerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[workerID]; ok {
		w.lastSeen = time.Now()
		w.active = true
	}
}

// masterAPI is the net/rpc surface of a Master. The wrapper keeps the
// Master's own methods off the wire.
type masterAPI struct {
	m *Master
}

func (a *masterAPI) Register(_ *RegisterArgs, reply *RegisterReply) error {
	m := a.m
	id := uuid.New().String()
	m.mu.Lock()
	m.workers[id] = &workerInfo{lastSeen: time.Now(), active: true}
	m.mu.Unlock()
	reply.WorkerID = id
	log.Infof("[Master] Worker %s registered", shortID(id))
	return nil
}

func (a *masterAPI) Heartbeat(args *HeartbeatArgs, reply *HeartbeatReply) error {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[args.WorkerID]
	if !ok {
		return fmt.Errorf("unknown worker %s", args.WorkerID)
	}
	w.lastSeen = time.Now()
	w.active = true
	reply.ShouldContinue = !m.finished
	return nil
}

func (a *masterAPI) GetTask(args *GetTaskArgs, reply *GetTaskReply) error {
	m := a.m
	m.touch(args.WorkerID)

	m.mu.Lock()
	finished := m.finished
	m.mu.Unlock()
	if finished {
		reply.JobComplete = true
		return nil
	}

	tk, ok := m.tracker.assign(args.WorkerID)
	if !ok {
		m.mu.Lock()
		reply.JobComplete = m.finished
		m.mu.Unlock()
		reply.Wait = !reply.JobComplete
		return nil
	}

	reply.TaskID = tk.id
	reply.Type = tk.typ
	reply.Input = tk.input
	reply.Partition = tk.partition
	reply.NMap = len(m.cfg.Inputs)
	reply.NReduce = m.cfg.Reducers
	reply.BatchSize = m.cfg.BatchSize
	reply.InterDir = m.interDir
	reply.OutputDir = m.cfg.OutputDir
	log.Tracef("[Master] Assigned %s task %d to worker %s", tk.typ, tk.id, shortID(args.WorkerID))
	return nil
}

func (a *masterAPI) TaskDone(args *TaskDoneArgs, _ *TaskDoneReply) error {
	m := a.m
	m.touch(args.WorkerID)

	if !args.Success {
		log.Warnf("[Master] Task %d failed on worker %s: %s", args.TaskID, shortID(args.WorkerID), args.Error)
		if err := m.tracker.fail(args.TaskID); err != nil {
			m.fail(fmt.Errorf("%v: %s", err, args.Error))
		}
		return nil
	}

	first, err := m.tracker.markDone(args.TaskID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	m.mu.Lock()
	m.records += args.Records
	m.pairs += args.Pairs
	if args.Output != "" {
		m.outputs = append(m.outputs, args.Output)
		m.rows += args.Rows
	}
	m.mu.Unlock()
	m.advancePhase()
	return nil
}
