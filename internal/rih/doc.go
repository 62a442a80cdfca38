// Package rih implements the representation-independent hasher: a
// canonical, deterministic SHA-256 digest over a small closed set of
// structured values (byte strings, unsigned integers, arrays, and
// field-labeled maps).
//
// The encoding rules here are an external wire contract: delegation
// messages must hash identically on every replica of the host platform and
// on any off-platform verifier. Nothing in this package may change without
// breaking that contract.
package rih
