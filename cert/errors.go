package cert

import "errors"

var (
	// ErrNotCertified is returned when the platform has not yet published
	// a certificate over any certified-data value (RefreshRoot has never
	// been called, or the platform was just constructed).
	ErrNotCertified = errors.New("cert: platform has not certified a root yet")
	// ErrNoWitness is returned when no signature map record exists for
	// the requested (seed, msg) pair.
	ErrNoWitness = errors.New("cert: no witness for the requested seed and message hash")
)
