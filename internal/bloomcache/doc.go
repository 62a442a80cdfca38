// Package bloomcache is a probabilistic front-door cache letting
// delegation lookups fast-reject a seed that provably has no live
// signature, without consulting the signature map. A negative answer is
// definitive; a positive answer only means the signature map must be
// consulted.
package bloomcache
