// Package fibonacci provides the sequence generators consumed by the
// generation engine.
//
// A Generator walks the Fibonacci sequence from F(0) = 0 one term at a time
// and renders every term as canonical decimal text. Two implementations are
// registered by default:
//
//   - "decimal": base 10^18 limbs (internal/bignum), rendering is linear in
//     the number of digits. This is the default.
//   - "big": math/big state rendered with (*big.Int).Append, kept as an
//     independent implementation for cross-validation.
//
// Generators are not safe for concurrent use; each engine invocation owns a
// fresh one.
package fibonacci
