package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubInput serves pre-baked records in batches, like a file reader would.
type stubInput struct {
	recs []string
	pos  int
}

func (s *stubInput) Read(n int) ([]string, error) {
	if s.pos >= len(s.recs) {
		return nil, nil
	}
	end := s.pos + n
	if end > len(s.recs) {
		end = len(s.recs)
	}
	out := s.recs[s.pos:end]
	s.pos = end
	return out, nil
}

func (s *stubInput) Close() error { return nil }

func stubOpener(shards map[string][]string) InputOpener[string] {
	return func(path string) (InputFormat[string], error) {
		recs, ok := shards[path]
		if !ok {
			return nil, fmt.Errorf("no such shard: %s", path)
		}
		return &stubInput{recs: recs}, nil
	}
}

// firstLetterMapper keys each word by its first byte and drops empty words.
type firstLetterMapper struct{}

func (firstLetterMapper) Map(rec string) (string, int, bool) {
	if rec == "" {
		return "", 0, false
	}
	return rec[:1], len(rec), true
}

// sumReducer adds up the mapped lengths per key.
type sumReducer struct{}

func (sumReducer) Reduce(_ string, values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func TestLocalRunGroupsAndReduces(t *testing.T) {
	shards := map[string][]string{
		"a.txt": {"ant", "bee", "", "axe"},
		"b.txt": {"bat", "cow", "ape"},
	}
	eng := Local[string, string, int, int]{
		Mapper:  firstLetterMapper{},
		Reducer: sumReducer{},
		Open:    stubOpener(shards),
		Config:  LocalConfig{Workers: 4, BatchSize: 2},
	}

	out, stats, err := eng.Run(context.Background(), []string{"a.txt", "b.txt"})
	require.NoError(t, err)

	require.Equal(t, map[string]int{"a": 9, "b": 6, "c": 3}, out)
	require.Equal(t, 7, stats.Records)
	require.Equal(t, 6, stats.Pairs)
	require.Equal(t, 3, stats.Groups)
}

func TestLocalRunSingleWorkerMatchesParallel(t *testing.T) {
	shards := map[string][]string{
		"a.txt": {"ant", "bee", "axe", "bat", "cow", "ape", "cat", "cub"},
	}
	inputs := []string{"a.txt"}

	run := func(workers int) map[string]int {
		eng := Local[string, string, int, int]{
			Mapper:  firstLetterMapper{},
			Reducer: sumReducer{},
			Open:    stubOpener(shards),
			Config:  LocalConfig{Workers: workers, BatchSize: 3},
		}
		out, _, err := eng.Run(context.Background(), inputs)
		require.NoError(t, err)
		return out
	}

	require.Equal(t, run(1), run(8))
}

func TestLocalRunInputError(t *testing.T) {
	eng := Local[string, string, int, int]{
		Mapper:  firstLetterMapper{},
		Reducer: sumReducer{},
		Open:    stubOpener(map[string][]string{"a.txt": {"ant"}}),
	}

	_, _, err := eng.Run(context.Background(), []string{"a.txt", "missing.txt"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.txt")
}

func TestLocalRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := Local[string, string, int, int]{
		Mapper:  firstLetterMapper{},
		Reducer: sumReducer{},
		Open:    stubOpener(map[string][]string{"a.txt": {"ant", "bee"}}),
	}

	_, _, err := eng.Run(ctx, []string{"a.txt"})
	require.Error(t, err)
}

func TestGrouperMergeKeepsAllValues(t *testing.T) {
	a := NewGrouper[string, int]()
	a.Add("x", 1)
	a.Add("x", 2)
	b := NewGrouper[string, int]()
	b.Add("x", 3)
	b.Add("y", 4)

	a.Merge(b)
	require.Equal(t, []int{1, 2, 3}, a.Groups()["x"])
	require.Equal(t, []int{4}, a.Groups()["y"])
	require.Equal(t, 4, a.Pairs())
	require.Equal(t, 2, a.Len())
}
