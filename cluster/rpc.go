// Package cluster runs a job as one master coordinating map and reduce
// tasks over net/rpc workers. Workers poll for work, so only the master
// listens; a worker needs nothing but the master's address and the job
// logic compiled in.
package cluster

// TaskType distinguishes the two phases of a job.
type TaskType int

const (
	MapTask TaskType = iota
	ReduceTask
)

func (t TaskType) String() string {
	if t == MapTask {
		return "map"
	}
	return "reduce"
}

type RegisterArgs struct{}

type RegisterReply struct {
	WorkerID string
}

type GetTaskArgs struct {
	WorkerID string
}

type GetTaskReply struct {
	// Wait tells the worker to back off and poll again: the job is still
	// running but no task is idle right now.
	Wait bool
	// JobComplete tells the worker to leave its poll loop.
	JobComplete bool

	TaskID    int
	Type      TaskType
	Input     string // map tasks: input shard path
	Partition int    // reduce tasks: partition index
	NMap      int
	NReduce   int
	BatchSize int
	InterDir  string
	OutputDir string
}

type TaskDoneArgs struct {
	WorkerID string
	TaskID   int
	Success  bool
	Error    string

	// Map task counters.
	Records int
	Pairs   int

	// Reduce task results.
	Output string
	Rows   int
}

type TaskDoneReply struct{}

type HeartbeatArgs struct {
	WorkerID string
}

type HeartbeatReply struct {
	ShouldContinue bool
}
