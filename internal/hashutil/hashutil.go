// Package hashutil implements seed-combining helpers used to build the
// content hashes of descriptors, attributes and kernel-cache keys.
package hashutil

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Combine folds value into seed.
func Combine(seed, value uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], value)
	return xxhash.Sum64(buf[:])
}

// CombineBool folds a bool into seed.
func CombineBool(seed uint64, value bool) uint64 {
	if value {
		return Combine(seed, 1)
	}
	return Combine(seed, 0)
}

// CombineInts folds a slice of ints into seed, length included, so that
// [1 2] and [1 2 0] hash differently.
func CombineInts(seed uint64, values []int) uint64 {
	seed = Combine(seed, uint64(len(values)))
	for _, v := range values {
		seed = Combine(seed, uint64(int64(v)))
	}
	return seed
}

// CombineFloat32s folds a slice of float32s into seed, length included,
// by their IEEE bit patterns.
func CombineFloat32s(seed uint64, values []float32) uint64 {
	seed = Combine(seed, uint64(len(values)))
	for _, v := range values {
		seed = Combine(seed, uint64(math.Float32bits(v)))
	}
	return seed
}

// Sum64 hashes a raw byte payload.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// CombineString folds a string into seed.
func CombineString(seed uint64, value string) uint64 {
	return Combine(seed, xxhash.Sum64String(value))
}
