package pipeline

import (
	"encoding/json"
	"errors"
	"io"
)

// Pair is one mapper emission in transit between map and reduce tasks.
type Pair[K comparable, V any] struct {
	Key   K `json:"k"`
	Value V `json:"v"`
}

// EncodePairs writes pairs to w, one JSON document per line.
func EncodePairs[K comparable, V any](w io.Writer, pairs []Pair[K, V]) error {
	enc := json.NewEncoder(w)
	for i := range pairs {
		if err := enc.Encode(&pairs[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodePairs reads JSON-line pairs from r until the stream ends.
func DecodePairs[K comparable, V any](r io.Reader) ([]Pair[K, V], error) {
	dec := json.NewDecoder(r)
	var out []Pair[K, V]
	for {
		var p Pair[K, V]
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, p)
	}
}

// EncodeKey renders a key into the stable byte form used for partitioning.
// Equal keys produce equal encodings.
func EncodeKey[K comparable](key K) ([]byte, error) {
	return json.Marshal(key)
}
