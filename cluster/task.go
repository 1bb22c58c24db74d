package cluster

import (
	"fmt"
	"sync"
	"time"
)

// maxTaskAttempts bounds how often one task may be handed out before the
// whole job is declared failed.
const maxTaskAttempts = 3

type taskState int

const (
	taskIdle taskState = iota
	taskRunning
	taskDone
)

type task struct {
	id        int
	typ       TaskType
	input     string
	partition int

	state    taskState
	worker   string
	started  time.Time
	attempts int
}

// tracker hands tasks to polling workers and reclaims the ones whose
// workers stall or die. The reduce phase starts only after every map task
// has completed.
type tracker struct {
	mu          sync.Mutex
	tasks       map[int]*task
	nReduce     int
	timeout     time.Duration
	reducePhase bool
}

func newTracker(nReduce int, timeout time.Duration) *tracker {
	return &tracker{
		tasks:   make(map[int]*task),
		nReduce: nReduce,
		timeout: timeout,
	}
}

func (t *tracker) initMapTasks(inputs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = make(map[int]*task, len(inputs))
	for i, path := range inputs {
		t.tasks[i] = &task{id: i, typ: MapTask, input: path}
	}
}

// assign hands out one idle task. The second result is false when nothing
// is idle, which means the caller should poll again or the phase is over.
func (t *tracker) assign(workerID string) (task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tk := range t.tasks {
		if tk.state != taskIdle {
			continue
		}
		tk.state = taskRunning
		tk.worker = workerID
		tk.started = time.Now()
		tk.attempts++
		return *tk, true
	}
	return task{}, false
}

// markDone records a completed task. The first result is false when the
// task had already been completed, e.g. by a worker whose task was
// reassigned after a stall; callers must drop such duplicate reports.
func (t *tracker) markDone(id int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok {
		return false, fmt.Errorf("unknown task %d", id)
	}
	if tk.state == taskDone {
		return false, nil
	}
	tk.state = taskDone
	return true, nil
}

// fail returns the task to the idle pool, or reports an error once its
// retry budget is spent.
func (t *tracker) fail(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok {
		return fmt.Errorf("unknown task %d", id)
	}
	if tk.state == taskDone {
		return nil
	}
	if tk.attempts >= maxTaskAttempts {
		return fmt.Errorf("%s task %d failed %d times", tk.typ, id, tk.attempts)
	}
	tk.state = taskIdle
	tk.worker = ""
	tk.started = time.Time{}
	return nil
}

// reclaimStalled re-queues running tasks whose workers have been silent
// past the timeout. A stalled task with no retry budget left fails the
// job.
func (t *tracker) reclaimStalled() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	now := time.Now()
	for _, tk := range t.tasks {
		if tk.state != taskRunning || now.Sub(tk.started) <= t.timeout {
			continue
		}
		if tk.attempts >= maxTaskAttempts {
			return n, fmt.Errorf("%s task %d stalled after %d attempts", tk.typ, tk.id, tk.attempts)
		}
		tk.state = taskIdle
		tk.worker = ""
		n++
	}
	return n, nil
}

// reclaimWorker re-queues every running task held by one worker.
func (t *tracker) reclaimWorker(workerID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, tk := range t.tasks {
		if tk.state == taskRunning && tk.worker == workerID && tk.attempts < maxTaskAttempts {
			tk.state = taskIdle
			tk.worker = ""
			n++
		}
	}
	return n
}

func (t *tracker) phaseDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tk := range t.tasks {
		if tk.state != taskDone {
			return false
		}
	}
	return true
}

func (t *tracker) inReducePhase() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reducePhase
}

// startReducePhase swaps the completed map tasks for one reduce task per
// partition.
func (t *tracker) startReducePhase() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = make(map[int]*task, t.nReduce)
	for i := 0; i < t.nReduce; i++ {
		t.tasks[i] = &task{id: i, typ: ReduceTask, partition: i}
	}
	t.reducePhase = true
}
