// Package simerrors defines the sentinel error values used across the
// compartmental solver to classify failures the way the host is expected to
// handle them: configuration errors are the caller's fault and are reported
// at the offending API call; numerical errors abort the in-progress tick and
// leave the model needing re-initialization.
package simerrors

import "errors"

// ErrConfiguration marks a malformed or inconsistent configuration bundle:
// a missing required parameter, a duplicate compartment id, an unknown
// parent, an unknown receptor kind, a negative spike weight, or a
// non-positive capacitance.
var ErrConfiguration = errors.New("configuration error")

// ErrIndexRange marks a receptor id or compartment id outside the valid
// range for the tree it was addressed to.
var ErrIndexRange = errors.New("index out of range")

// ErrNumericalDegeneracy marks a zero pivot encountered during the
// down-sweep (gg == 0), which signals an ill-posed compartment
// (zero capacitance and zero coupling). The tick that produced it must be
// treated as aborted; tree state afterward is undefined until Init is
// called again.
var ErrNumericalDegeneracy = errors.New("numerical degeneracy")
