package cert

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/forestrie/ic-siglog/internal/siglog"
)

// selfDescribeTag is the fixed 3-byte CBOR self-describe tag (major type
// 6, tag 55799, RFC 8949 §3.4.6), prepended to every envelope so a
// generic CBOR reader can sniff the format without external context. Kept
// as a literal rather than emitted by the codec so tagging stays separate
// from the encode options.
var selfDescribeTag = []byte{0xd9, 0xd9, 0xf7}

// DeterministicEncMode returns CBOR encode options with canonical
// map-key sort order and no indefinite-length items, so the same logical
// value always serializes to the same bytes. The envelope and the
// directory snapshot codec share it, keeping one CBOR convention across
// the repo.
func DeterministicEncMode() (cbor.EncMode, error) {
	opts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	return opts.EncMode()
}

// wireTree converts a siglog.Node into its fixed-shape array encoding:
// Empty -> [0], Fork(l,r) -> [1,l,r],
// Labeled(k,v) -> [2, <bstr k>, v], Leaf(b) -> [3, <bstr b>],
// Pruned(h) -> [4, <bstr h>].
func wireTree(n *siglog.Node) []interface{} {
	switch n.Kind() {
	case siglog.KindEmpty:
		return []interface{}{0}
	case siglog.KindFork:
		return []interface{}{1, wireTree(n.Left()), wireTree(n.Right())}
	case siglog.KindLabeled:
		return []interface{}{2, n.Label(), wireTree(n.Child())}
	case siglog.KindLeaf:
		return []interface{}{3, n.LeafBytes()}
	case siglog.KindPruned:
		h := n.PrunedHash()
		return []interface{}{4, h[:]}
	default:
		panic("cert: unknown node kind")
	}
}

// envelope is the wire shape of the {certificate, tree} pair returned by
// get_delegation.
type envelope struct {
	Certificate []byte      `cbor:"certificate"`
	Tree        interface{} `cbor:"tree"`
}

// MarshalEnvelope encodes a delegation's certificate and inclusion
// witness as a self-describe-tagged, deterministic CBOR byte string.
func MarshalEnvelope(certificate []byte, witness *siglog.Node) ([]byte, error) {
	em, err := DeterministicEncMode()
	if err != nil {
		return nil, err
	}
	body, err := em.Marshal(envelope{
		Certificate: certificate,
		Tree:        wireTree(witness),
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(selfDescribeTag)+len(body))
	out = append(out, selfDescribeTag...)
	out = append(out, body...)
	return out, nil
}
