package cert

import "github.com/forestrie/ic-siglog/internal/siglog"

// sigLabel prefixes the signature map root before certification: the
// published certified-data value is LabeledHash("sig", root), not the bare
// root, so a verifier can distinguish this service's certified data from
// any other labeled subtree the host might also certify.
var sigLabel = []byte("sig")

// Facade is the certification facade (CF): it recomputes and republishes
// the signature map's certified root, and packages inclusion witnesses
// for delegation requests.
type Facade struct{}

// RefreshRoot recomputes sm's root and publishes
// labeled_hash("sig", root) to platform. Call this after every mutation
// to sm that should be reflected in the next certificate the platform
// issues.
func (Facade) RefreshRoot(sm *siglog.SignatureMap, platform Platform) {
	root := sm.RootHash()
	certifiedData := siglog.LabeledHash(sigLabel, root)
	platform.SetCertifiedData(certifiedData[:])
}

// GetDelegation returns the CBOR envelope proving (seed, msg)'s
// inclusion under the platform's currently certified root. It returns
// ErrNotCertified if RefreshRoot has never been called, and ErrNoWitness
// if sm holds no record for (seed, msg). The witness is wrapped in the
// same "sig" label RefreshRoot certifies, so a verifier can rehash the
// returned tree and compare it directly against the certificate's
// certified-data value with no separate prefixing step.
func (Facade) GetDelegation(sm *siglog.SignatureMap, platform Platform, seed, msg siglog.Hash) ([]byte, error) {
	certificate, ok := platform.DataCertificate()
	if !ok {
		return nil, ErrNotCertified
	}
	witness, ok := sm.Witness(seed, msg)
	if !ok {
		return nil, ErrNoWitness
	}
	return MarshalEnvelope(certificate, siglog.Label(sigLabel, witness))
}
