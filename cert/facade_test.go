package cert

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"

	"github.com/forestrie/ic-siglog/internal/siglog"
)

func TestFacade_GetDelegation_NotCertifiedBeforeFirstRefresh(t *testing.T) {
	sm := siglog.NewSignatureMap()
	platform, err := NewMockPlatform()
	require.NoError(t, err)

	f := Facade{}
	_, err = f.GetDelegation(sm, platform, siglog.Hash{1}, siglog.Hash{2})
	require.ErrorIs(t, err, ErrNotCertified)
}

func TestFacade_GetDelegation_NoWitnessAfterRefresh(t *testing.T) {
	sm := siglog.NewSignatureMap()
	platform, err := NewMockPlatform()
	require.NoError(t, err)

	f := Facade{}
	f.RefreshRoot(sm, platform)

	_, err = f.GetDelegation(sm, platform, siglog.Hash{1}, siglog.Hash{2})
	require.ErrorIs(t, err, ErrNoWitness)
}

func TestFacade_GetDelegation_ReturnsVerifiableEnvelope(t *testing.T) {
	sm := siglog.NewSignatureMap()
	seed := siglog.Hash{1}
	msg := siglog.Hash{2}
	sm.Put(seed, msg, 1000)

	platform, err := NewMockPlatform()
	require.NoError(t, err)

	f := Facade{}
	f.RefreshRoot(sm, platform)

	data, err := f.GetDelegation(sm, platform, seed, msg)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	require.Equal(t, selfDescribeTag, data[:3])

	certificate, ok := platform.DataCertificate()
	require.True(t, ok)
	var msgOut cose.Sign1Message
	require.NoError(t, msgOut.UnmarshalCBOR(certificate))
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, platform.PublicKey())
	require.NoError(t, err)
	require.NoError(t, msgOut.Verify(nil, verifier))
}

func TestFacade_GetDelegation_WitnessRehashesToCertifiedData(t *testing.T) {
	// Rehashing the sig-labeled witness returned in the envelope must
	// equal the certified-data value the platform actually signed.
	sm := siglog.NewSignatureMap()
	seed := siglog.Hash{1}
	msg := siglog.Hash{2}
	sm.Put(seed, msg, 1000)

	platform, err := NewMockPlatform()
	require.NoError(t, err)

	f := Facade{}
	f.RefreshRoot(sm, platform)

	data, err := f.GetDelegation(sm, platform, seed, msg)
	require.NoError(t, err)
	var env struct {
		Tree interface{} `cbor:"tree"`
	}
	require.NoError(t, cbor.Unmarshal(data[3:], &env))

	witness, ok := sm.Witness(seed, msg)
	require.True(t, ok)
	wrapped := siglog.Label(sigLabel, witness)

	// The envelope's tree is exactly the sig-labeled witness.
	wireWrapped, err := cbor.Marshal(wireTree(wrapped))
	require.NoError(t, err)
	var want interface{}
	require.NoError(t, cbor.Unmarshal(wireWrapped, &want))
	require.Equal(t, want, env.Tree)

	certifiedData := siglog.LabeledHash(sigLabel, sm.RootHash())
	require.Equal(t, certifiedData, siglog.HashNode(wrapped))
}

func TestFacade_RefreshRoot_ChangesCertifiedDataOnMutation(t *testing.T) {
	sm := siglog.NewSignatureMap()
	platform, err := NewMockPlatform()
	require.NoError(t, err)

	f := Facade{}
	f.RefreshRoot(sm, platform)
	cert1, _ := platform.DataCertificate()

	sm.Put(siglog.Hash{9}, siglog.Hash{9}, 10)
	f.RefreshRoot(sm, platform)
	cert2, _ := platform.DataCertificate()

	// Two distinct COSE signatures over two distinct payloads; at minimum
	// they must not be byte-identical.
	require.NotEqual(t, cert1, cert2)
}
