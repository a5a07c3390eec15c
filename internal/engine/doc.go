// Package engine streams the Fibonacci sequence, rendered as decimal text,
// into a writer without exceeding a byte budget.
//
// Output starts at F(0) and terms are separated by a single '\n' written
// before every term except the first, so the stream never ends with a
// separator. A term is either written in full or not at all: the engine stops
// with StatusBudgetExhausted as soon as the next separator and term would
// overflow the budget. With a budget of 6 the output is "0\n1\n1".
//
// Terms are staged in a chunk buffer of Options.BufferSize bytes and flushed
// when the next term would not fit. Memory use is bounded by the buffer plus
// the size of the current term, whatever the budget.
package engine
