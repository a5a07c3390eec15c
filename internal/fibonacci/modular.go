package fibonacci

import (
	"fmt"
	"math/bits"
)

// MaxSuffixDigits is the widest suffix LastDigits can compute in uint64.
const MaxSuffixDigits = 19

// Mod returns F(n) mod m by fast doubling, in O(log n) steps and constant
// memory. It does not depend on the generators and is used to check them.
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)² + F(k)²
func Mod(n, m uint64) (uint64, error) {
	if m == 0 {
		return 0, fmt.Errorf("modulus must be positive")
	}
	if m == 1 {
		return 0, nil
	}

	var a, b uint64 = 0, 1 // F(k), F(k+1)
	for i := bits.Len64(n) - 1; i >= 0; i-- {
		c := mulMod(a, subMod(addMod(b, b, m), a, m), m)
		d := addMod(mulMod(a, a, m), mulMod(b, b, m), m)
		if n>>uint(i)&1 == 0 {
			a, b = c, d
		} else {
			a, b = d, addMod(c, d, m)
		}
	}
	return a, nil
}

// LastDigits returns F(n) mod 10^k for 1 <= k <= MaxSuffixDigits.
func LastDigits(n uint64, k int) (uint64, error) {
	if k < 1 || k > MaxSuffixDigits {
		return 0, fmt.Errorf("digit count %d outside [1, %d]", k, MaxSuffixDigits)
	}
	m := uint64(1)
	for range k {
		m *= 10
	}
	return Mod(n, m)
}

// addMod, subMod and mulMod expect operands already reduced below m.
func addMod(x, y, m uint64) uint64 {
	s, carry := bits.Add64(x, y, 0)
	if carry != 0 || s >= m {
		s -= m
	}
	return s
}

func subMod(x, y, m uint64) uint64 {
	if x >= y {
		return x - y
	}
	return x + (m - y)
}

func mulMod(x, y, m uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return bits.Rem64(hi, lo, m)
}
