// Package plan turns the user's size and split settings into the list of
// destinations to generate and the byte budget planned for each.
//
// Sizes are positive integers scaled by a 1024-based unit (b, k, m, g, t, p,
// case-insensitive). The unit may also be written as a suffix of the value,
// as in "10k". Under stop semantics with more than one split, the per-split
// size is capped at total/split so the splits together never exceed the
// total; the running cap applied while generating belongs to the orchestrator.
package plan
