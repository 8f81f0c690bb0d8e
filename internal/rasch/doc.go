// Package rasch estimates person abilities and item difficulties for a
// dichotomous response matrix under the Rasch model, and computes the
// residual-based fit statistics (infit/outfit MNSQ and ZSTD) for both
// populations.
//
// The package is pure: every call is synchronous, performs no I/O and keeps
// no state between calls, so concurrent use needs no coordination. Callers
// that must stay responsive run Calculate on their own goroutine.
package rasch
