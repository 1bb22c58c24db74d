package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type testKey struct {
	Year   int    `json:"year"`
	Market string `json:"market"`
}

func TestPairsRoundTrip(t *testing.T) {
	in := []Pair[testKey, float64]{
		{Key: testKey{2004, "JFK-LAX"}, Value: 330},
		{Key: testKey{2004, "ATL-ORD"}, Value: 95.5},
		{Key: testKey{2005, "JFK-LAX"}, Value: 312},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodePairs(&buf, in))

	out, err := DecodePairs[testKey, float64](&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecodePairsEmpty(t *testing.T) {
	out, err := DecodePairs[testKey, float64](bytes.NewReader(nil))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestEncodeKeyStableAcrossEqualKeys(t *testing.T) {
	a, err := EncodeKey(testKey{2004, "JFK-LAX"})
	require.NoError(t, err)
	b, err := EncodeKey(testKey{2004, "JFK-LAX"})
	require.NoError(t, err)
	require.Equal(t, a, b)

	// Equal structural keys must also agree on their reduce partition.
	require.Equal(t, PartitionFor(a, 5), PartitionFor(b, 5))
}
