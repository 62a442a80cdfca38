// Package siglog implements the signature map: a pruning, expiry-aware
// map from (seed, message-hash) pairs to an expiry timestamp, materialized
// as a two-level labeled Merkle tree.
//
// The map needs arbitrary insert and delete over an unordered keyspace, so
// the tree is rebuilt functionally from a sorted entry slice on every
// root/witness request rather than maintained as a mutable node store. The
// root depends only on the current (seed, msg, expiry) set, never on the
// order operations were applied in.
package siglog
