package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"time"

	"github.com/veraison/go-cose"
)

// MockPlatform stands in for the host runtime: a replicated execution
// environment with native certified-data support. There is no such host
// here, so DataCertificate instead returns a COSE_Sign1 message signing
// the current certified-data value with an in-process ECDSA P-256 key.
//
// A real deployment replaces MockPlatform wholesale with bindings into
// the actual host; this service itself never manages the signing key.
type MockPlatform struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	current []byte
	has     bool
}

// NewMockPlatform generates a fresh signing key and returns an empty
// platform (no certified data published yet).
func NewMockPlatform() (*MockPlatform, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &MockPlatform{key: key}, nil
}

// Time returns the wall clock in nanoseconds, standing in for the host's
// monotonic replica time.
func (p *MockPlatform) Time() uint64 {
	return uint64(time.Now().UnixNano())
}

// SetCertifiedData publishes data as the new certified-data value.
func (p *MockPlatform) SetCertifiedData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = append([]byte(nil), data...)
	p.has = true
}

// DataCertificate signs the current certified-data value and returns the
// COSE_Sign1-encoded certificate, or ok=false if nothing has been
// published yet.
func (p *MockPlatform) DataCertificate() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.has {
		return nil, false
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, p.key)
	if err != nil {
		return nil, false
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: cose.AlgorithmES256,
			},
		},
		Payload: p.current,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, false
	}

	encoded, err := msg.MarshalCBOR()
	if err != nil {
		return nil, false
	}
	return encoded, true
}

// PublicKey exposes the verification key for out-of-band verifiers
// (tests, or a CLI that wants to check a certificate offline).
func (p *MockPlatform) PublicKey() *ecdsa.PublicKey {
	return &p.key.PublicKey
}
