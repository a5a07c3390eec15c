package bignum

import (
	"errors"
	"math/big"
	"strconv"
)

const (
	// LimbDigits is the number of decimal digits held by one limb.
	LimbDigits = 18
	// LimbBase is the radix of a limb, 10^LimbDigits.
	LimbBase uint64 = 1_000_000_000_000_000_000
)

// ErrSyntax is returned by ParseDecimal for input that is not a decimal integer.
var ErrSyntax = errors.New("bignum: invalid decimal syntax")

// pow10 holds 10^0 .. 10^18.
var pow10 = func() [LimbDigits + 1]uint64 {
	var t [LimbDigits + 1]uint64
	t[0] = 1
	for i := 1; i < len(t); i++ {
		t[i] = t[i-1] * 10
	}
	return t
}()

// digitPairs is the "00".."99" lookup used when rendering limbs.
const digitPairs = "00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// Nat is an unsigned integer of unbounded size.
//
// The zero value is 0 and ready to use. limbs is little-endian and never has
// a zero most-significant limb, so every value has exactly one representation
// (zero is the empty slice).
type Nat struct {
	limbs []uint64
}

// NewNat returns a Nat set to v.
func NewNat(v uint64) *Nat {
	return new(Nat).SetUint64(v)
}

// SetUint64 sets z to v and returns z.
func (z *Nat) SetUint64(v uint64) *Nat {
	z.limbs = z.limbs[:0]
	for v != 0 {
		z.limbs = append(z.limbs, v%LimbBase)
		v /= LimbBase
	}
	return z
}

// Set sets z to x and returns z.
func (z *Nat) Set(x *Nat) *Nat {
	if z == x {
		return z
	}
	z.limbs = append(z.limbs[:0], x.limbs...)
	return z
}

// IsZero reports whether z == 0.
func (z *Nat) IsZero() bool { return len(z.limbs) == 0 }

// Len returns the number of limbs in use.
func (z *Nat) Len() int { return len(z.limbs) }

// Add sets z to x + y and returns z. z may alias x or y.
func (z *Nat) Add(x, y *Nat) *Nat {
	a, b := x.limbs, y.limbs
	if len(a) < len(b) {
		a, b = b, a
	}
	n := len(a)

	out := z.limbs
	if cap(out) < n+1 {
		// Reads below come from a and b, which still point at the old arrays.
		out = make([]uint64, n, n+n/4+2)
	} else {
		out = out[:n]
	}

	var carry uint64
	for i := 0; i < len(b); i++ {
		s := a[i] + b[i] + carry
		if s >= LimbBase {
			s -= LimbBase
			carry = 1
		} else {
			carry = 0
		}
		out[i] = s
	}
	for i := len(b); i < n; i++ {
		s := a[i] + carry
		if s >= LimbBase {
			s -= LimbBase
			carry = 1
		} else {
			carry = 0
		}
		out[i] = s
	}
	if carry != 0 {
		out = append(out, carry)
	}
	z.limbs = out
	return z
}

// Cmp compares z and x and returns -1, 0 or +1.
func (z *Nat) Cmp(x *Nat) int {
	if len(z.limbs) != len(x.limbs) {
		if len(z.limbs) < len(x.limbs) {
			return -1
		}
		return 1
	}
	for i := len(z.limbs) - 1; i >= 0; i-- {
		switch {
		case z.limbs[i] < x.limbs[i]:
			return -1
		case z.limbs[i] > x.limbs[i]:
			return 1
		}
	}
	return 0
}

// DecimalLen returns len(z.String()) without rendering.
func (z *Nat) DecimalLen() int {
	if len(z.limbs) == 0 {
		return 1
	}
	top := z.limbs[len(z.limbs)-1]
	d := 1
	for d < LimbDigits && top >= pow10[d] {
		d++
	}
	return (len(z.limbs)-1)*LimbDigits + d
}

// AppendDecimal appends the canonical decimal text of z to dst: no sign,
// no leading zeros, "0" for zero.
func (z *Nat) AppendDecimal(dst []byte) []byte {
	if len(z.limbs) == 0 {
		return append(dst, '0')
	}
	top := len(z.limbs) - 1
	dst = strconv.AppendUint(dst, z.limbs[top], 10)
	for i := top - 1; i >= 0; i-- {
		dst = appendLimb(dst, z.limbs[i])
	}
	return dst
}

// appendLimb appends v zero-padded to LimbDigits digits.
func appendLimb(dst []byte, v uint64) []byte {
	var buf [LimbDigits]byte
	for i := LimbDigits - 2; i >= 0; i -= 2 {
		r := (v % 100) * 2
		v /= 100
		buf[i] = digitPairs[r]
		buf[i+1] = digitPairs[r+1]
	}
	return append(dst, buf[:]...)
}

// String returns the decimal text of z.
func (z *Nat) String() string {
	return string(z.AppendDecimal(make([]byte, 0, z.DecimalLen())))
}

// BigInt converts z to a *big.Int.
func (z *Nat) BigInt() *big.Int {
	r := new(big.Int)
	base := new(big.Int).SetUint64(LimbBase)
	limb := new(big.Int)
	for i := len(z.limbs) - 1; i >= 0; i-- {
		r.Mul(r, base)
		r.Add(r, limb.SetUint64(z.limbs[i]))
	}
	return r
}

// ParseDecimal parses a non-empty string of ASCII digits. Leading zeros are
// accepted and dropped.
func ParseDecimal(s string) (*Nat, error) {
	if s == "" {
		return nil, ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, ErrSyntax
		}
	}
	z := &Nat{limbs: make([]uint64, 0, (len(s)+LimbDigits-1)/LimbDigits)}
	for end := len(s); end > 0; end -= LimbDigits {
		start := end - LimbDigits
		if start < 0 {
			start = 0
		}
		var v uint64
		for _, c := range []byte(s[start:end]) {
			v = v*10 + uint64(c-'0')
		}
		z.limbs = append(z.limbs, v)
	}
	z.norm()
	return z, nil
}

// norm drops zero most-significant limbs.
func (z *Nat) norm() {
	i := len(z.limbs)
	for i > 0 && z.limbs[i-1] == 0 {
		i--
	}
	z.limbs = z.limbs[:i]
}
