package flights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestReduceMeansSkipMissingValues(t *testing.T) {
	key := Key{Year: 2004, Market: "JFK-LAX"}
	values := []FlightTimes{
		{Scheduled: ptr(10), Actual: ptr(12), Air: ptr(8)},
		{Scheduled: nil, Actual: ptr(14), Air: nil},
		{Scheduled: ptr(20), Actual: ptr(16), Air: nil},
	}

	agg := FlightTimeReducer{}.Reduce(key, values)

	require.Equal(t, key, agg.Key)
	require.Equal(t, 3, agg.Flights)
	require.NotNil(t, agg.Scheduled)
	require.Equal(t, 15.0, *agg.Scheduled)
	require.NotNil(t, agg.Actual)
	require.Equal(t, 14.0, *agg.Actual)
	require.NotNil(t, agg.Air)
	require.Equal(t, 8.0, *agg.Air)
}

func TestReduceAllMissingLeavesMeanUndefined(t *testing.T) {
	values := []FlightTimes{
		{Scheduled: ptr(100)},
		{Scheduled: ptr(110)},
	}

	agg := FlightTimeReducer{}.Reduce(Key{Year: 2004, Market: "ATL-ORD"}, values)

	require.Equal(t, 2, agg.Flights)
	require.Equal(t, 105.0, *agg.Scheduled)
	require.Nil(t, agg.Actual)
	require.Nil(t, agg.Air)
}

func TestReduceSingleValueGroup(t *testing.T) {
	agg := FlightTimeReducer{}.Reduce(Key{Year: 2005, Market: "DEN-SFO"}, []FlightTimes{
		{Scheduled: ptr(150), Actual: ptr(140), Air: ptr(120)},
	})

	require.Equal(t, 1, agg.Flights)
	require.Equal(t, 150.0, *agg.Scheduled)
	require.Equal(t, 140.0, *agg.Actual)
	require.Equal(t, 120.0, *agg.Air)
}
