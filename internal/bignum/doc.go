// Package bignum implements the unsigned arbitrary-precision integer used by
// the sequence generators.
//
// Values are stored as little-endian limbs in base 10^18 rather than in binary
// words. Addition stays linear in the number of limbs, and rendering to decimal
// text is a straight copy of each limb's digits with no division across the
// whole number. math/big needs a divide-and-conquer base conversion for every
// rendering.
package bignum
