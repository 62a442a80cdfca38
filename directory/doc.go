// Package directory is the user-directory state machine: it owns the
// persisted user_id -> []Entry map and drives the signature map and
// certification facade from internal/siglog and cert.
package directory
