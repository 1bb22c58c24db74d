// Package pipeline implements a small typed map/shuffle/reduce engine.
//
// A job turns input records of type R into key/value pairs (K, V), groups
// the pairs by key once every mapper emission has been collected, and folds
// each group into an aggregate of type A. Mapper and Reducer implementations
// must be pure so a backend may invoke them in any order, on any machine.
package pipeline

// Mapper turns one record into at most one key/value pair. The boolean
// reports whether the record produced a pair at all; filtered records
// return false and leave no trace in the job output.
type Mapper[R any, K comparable, V any] interface {
	Map(rec R) (K, V, bool)
}

// Reducer folds every value observed for one key into a single aggregate.
// It is called exactly once per distinct key, and never before the shuffle
// has collected the key's complete value set.
type Reducer[K comparable, V any, A any] interface {
	Reduce(key K, values []V) A
}

// InputFormat streams records out of one input shard.
type InputFormat[R any] interface {
	// Read returns up to n records, continuing where the previous call
	// stopped. An exhausted stream returns an empty slice and no error.
	Read(n int) ([]R, error)
	Close() error
}

// OutputFormat renders aggregates into one output shard.
type OutputFormat[A any] interface {
	Write(a A) error
	Close() error
}

// InputOpener opens one input shard for reading.
type InputOpener[R any] func(path string) (InputFormat[R], error)

// OutputOpener creates one output shard for writing.
type OutputOpener[A any] func(path string) (OutputFormat[A], error)
