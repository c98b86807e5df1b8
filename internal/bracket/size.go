package bracket

import "math/bits"

// IsPowerOfTwo reports whether n is a power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// PowerOfTwoFloor returns the largest power of two <= n (0 for n <= 0).
func PowerOfTwoFloor(n int) int {
	if n <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

// Log2 returns log2(n) for a power of two n.
func Log2(n int) int {
	return bits.Len(uint(n)) - 1
}
