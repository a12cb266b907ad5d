// Package safeconv provides checked integer type conversions. Must variants
// panic when the value cannot be represented; Safe variants clamp instead.
package safeconv

import "math"

// MustInt64ToUint64 converts int64 to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustInt64ToUint64(v int64) uint64 {
	if v < 0 {
		panic("safeconv: negative int64 to uint64 conversion")
	}

	return uint64(v)
}

// SafeInt64 converts uint64 to int64, clamping at math.MaxInt64.
func SafeInt64(v uint64) int64 {
	if v > uint64(math.MaxInt64) {
		return math.MaxInt64
	}

	return int64(v)
}
