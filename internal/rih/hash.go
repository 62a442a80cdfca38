package rih

import (
	"crypto/sha256"
	"sort"
)

// Hash is the fixed 32-byte digest width used throughout this system.
type Hash = [32]byte

// leb128 returns the unsigned LEB128 encoding of n.
func leb128(n uint64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

// HashValue computes the canonical digest of v per the encoding rules:
// bytes hash to their own SHA-256, u64 hashes its LEB128 form, arrays hash
// the concatenation of their elements' hashes, and maps hash the
// concatenation of (SHA256(fieldName), fieldHash) pairs sorted by the
// field-name hash's byte ordering.
func HashValue(v Value) Hash {
	switch v.kind {
	case KindBytes:
		return sha256.Sum256(v.bytes)
	case KindU64:
		return sha256.Sum256(leb128(v.u64))
	case KindArray:
		h := sha256.New()
		for _, e := range v.arr {
			eh := HashValue(e)
			h.Write(eh[:])
		}
		var out Hash
		copy(out[:], h.Sum(nil))
		return out
	case KindMap:
		return hashMap(v.m)
	default:
		panic("rih: unknown Value kind")
	}
}

type mapPair struct {
	keyHash Hash
	valHash Hash
}

func hashMap(fields map[string]Value) Hash {
	pairs := make([]mapPair, 0, len(fields))
	for k, v := range fields {
		pairs = append(pairs, mapPair{
			keyHash: sha256.Sum256([]byte(k)),
			valHash: HashValue(v),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return string(pairs[i].keyHash[:]) < string(pairs[j].keyHash[:])
	})

	h := sha256.New()
	for _, p := range pairs {
		h.Write(p.keyHash[:])
		h.Write(p.valHash[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashWithDomain applies domain separation: SHA256(len(domain) as a single
// byte, domain, x). The caller is responsible for ensuring len(domain) <=
// 255; every domain string used in this system is a short ASCII literal.
func HashWithDomain(domain string, x []byte) Hash {
	h := sha256.New()
	h.Write([]byte{byte(len(domain))})
	h.Write([]byte(domain))
	h.Write(x)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
