// Package verify checks that a destination holds exactly the stream the
// engine produces for a given budget.
package verify
