package directory

import (
	"bytes"
	"errors"
)

// Every one of these is a fatal condition for the current call: there is
// no local recovery, and callers surface the sentinel (or its message)
// directly rather than retrying.
var (
	// ErrAlreadyRegistered is returned by Register for an existing user.
	ErrAlreadyRegistered = errors.New("directory: user already registered")
	// ErrUnknownUser is returned by Add for a nonexistent user.
	ErrUnknownUser = errors.New("directory: unknown user")
	// ErrUnknownDevice is returned by GetDelegation when (user, pk) has no
	// matching device entry.
	ErrUnknownDevice = errors.New("directory: unknown device")
	// ErrNoSignature is returned by GetDelegation when SM has no witness
	// for the device, or the host platform has no certificate yet.
	ErrNoSignature = errors.New("directory: no signature available")
	// ErrPersistenceFailure is returned when saving or restoring a
	// directory snapshot fails (cmd/icsigd's snapshot hooks).
	ErrPersistenceFailure = errors.New("directory: persistence failure")
)

// Entry is one enrolled device. CredentialID is nil when absent.
type Entry struct {
	Alias        string `json:"alias"`
	PublicKey    []byte `json:"public_key"`
	Expiration   uint64 `json:"expiration"`
	CredentialID []byte `json:"credential_id,omitempty"`
}

func (e Entry) samePublicKey(pk []byte) bool {
	return bytes.Equal(e.PublicKey, pk)
}

// Delegation is the statement a certified signature covers: a device
// public key and its expiration. Targets is always nil in emitted
// delegations but kept in the type because the message-hash encoding
// reserves a field for it.
type Delegation struct {
	PublicKey  []byte   `json:"pubkey"`
	Expiration uint64   `json:"expiration"`
	Targets    [][]byte `json:"targets,omitempty"`
}

// SignedDelegation pairs a delegation with the CBOR certification
// envelope proving its inclusion under the platform's certified root.
type SignedDelegation struct {
	Delegation Delegation `json:"delegation"`
	Signature  []byte     `json:"signature"`
}
