package fibonacci

import (
	"math/big"

	"github.com/agbru/fibfill/internal/bignum"
)

// Generator yields the Fibonacci sequence as decimal text, starting at F(0).
type Generator interface {
	// Next appends the decimal text of the current term to dst, advances to
	// the following term and returns the extended slice.
	Next(dst []byte) []byte
	// Index returns the index of the term the next call to Next will render.
	Index() uint64
	// Name returns the registered name of the implementation.
	Name() string
}

// Sizer is implemented by generators that can report the length of the
// current term without rendering it.
type Sizer interface {
	// NextLen returns the number of bytes the next call to Next will append.
	NextLen() int
}

// DecimalGenerator keeps the sequence state in base 10^18 limbs.
type DecimalGenerator struct {
	cur, next *bignum.Nat
	index     uint64
}

// NewDecimalGenerator returns a generator positioned at F(0).
func NewDecimalGenerator() *DecimalGenerator {
	return &DecimalGenerator{cur: new(bignum.Nat), next: bignum.NewNat(1)}
}

// Next implements Generator.
func (g *DecimalGenerator) Next(dst []byte) []byte {
	dst = g.cur.AppendDecimal(dst)
	g.cur.Add(g.cur, g.next)
	g.cur, g.next = g.next, g.cur
	g.index++
	return dst
}

// NextLen implements Sizer.
func (g *DecimalGenerator) NextLen() int { return g.cur.DecimalLen() }

// Index implements Generator.
func (g *DecimalGenerator) Index() uint64 { return g.index }

// Name implements Generator.
func (g *DecimalGenerator) Name() string { return "decimal" }

// BigGenerator keeps the sequence state in math/big integers.
type BigGenerator struct {
	cur, next *big.Int
	index     uint64
}

// NewBigGenerator returns a generator positioned at F(0).
func NewBigGenerator() *BigGenerator {
	return &BigGenerator{cur: new(big.Int), next: big.NewInt(1)}
}

// Next implements Generator.
func (g *BigGenerator) Next(dst []byte) []byte {
	dst = g.cur.Append(dst, 10)
	g.cur.Add(g.cur, g.next)
	g.cur, g.next = g.next, g.cur
	g.index++
	return dst
}

// Index implements Generator.
func (g *BigGenerator) Index() uint64 { return g.index }

// Name implements Generator.
func (g *BigGenerator) Name() string { return "big" }

var (
	_ Generator = (*DecimalGenerator)(nil)
	_ Sizer     = (*DecimalGenerator)(nil)
	_ Generator = (*BigGenerator)(nil)
)
