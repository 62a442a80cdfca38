// Package auditlog is an append-only, tamper-evident log of directory
// mutations (register/add/remove events). Events are appended as leaves
// of a Merkle Mountain Range, so an operator can verify the mutation
// history was not silently rewritten using only the bagged-peaks root and
// per-event inclusion proofs.
package auditlog
