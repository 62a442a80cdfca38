package directory

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/forestrie/ic-siglog/cert"
)

// EncodeSnapshot serializes a directory snapshot as CBOR with the same
// deterministic encode options the certification envelope uses, so the
// repo carries one CBOR convention and the same logical snapshot always
// produces the same bytes regardless of map iteration order.
func EncodeSnapshot(users map[uint64][]Entry) ([]byte, error) {
	em, err := cert.DeterministicEncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(users)
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(data []byte) (map[uint64][]Entry, error) {
	var users map[uint64][]Entry
	if err := cbor.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}
