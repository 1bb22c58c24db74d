package flights

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateWriterSortsAndRenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-00000.csv")
	w, err := CreateAggregates(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(Aggregate{
		Key: Key{Year: 2005, Market: "ATL-ORD"}, Flights: 1,
		Scheduled: ptr(95), Actual: ptr(101.5), Air: ptr(80),
	}))
	require.NoError(t, w.Write(Aggregate{
		Key: Key{Year: 2004, Market: "JFK-LAX"}, Flights: 2,
		Scheduled: ptr(330), Actual: ptr(340), Air: ptr(295),
	}))
	require.NoError(t, w.Write(Aggregate{
		Key: Key{Year: 2004, Market: "ATL-ORD"}, Flights: 3,
		Scheduled: ptr(100),
	}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"year,market,flights,scheduled,actual,in_air\n"+
			"2004,ATL-ORD,3,100.00,NA,NA\n"+
			"2004,JFK-LAX,2,330.00,340.00,295.00\n"+
			"2005,ATL-ORD,1,95.00,101.50,80.00\n",
		string(data))
}

func TestAggregateWriterEmptyShard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-00001.csv")
	w, err := CreateAggregates(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, OutputHeader+"\n", string(data))
}
