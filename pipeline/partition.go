package pipeline

import "hash/fnv"

// PartitionFor maps an encoded key onto one of nReduce partitions. Equal
// key encodings always land in the same partition.
func PartitionFor(key []byte, nReduce int) int {
	if nReduce <= 0 {
		panic("nReduce must be > 0")
	}
	h := fnv.New32a()
	_, _ = h.Write(key)
	return int(h.Sum32()&0x7fffffff) % nReduce
}
