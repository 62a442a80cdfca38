package rih

import (
	"crypto/sha256"
	"strconv"
)

// delegationDomain is the domain separator applied to every delegation
// signature message hash. Changing it is a breaking protocol change.
const delegationDomain = "ic-request-auth-delegation"

// DelegationMessageHash computes the canonical hash of a delegation record:
// a map with "pubkey" and "expiration" fields, plus a "targets" field only
// when targets is non-empty, domain-separated with delegationDomain.
func DelegationMessageHash(pubkey []byte, expiration uint64, targets [][]byte) Hash {
	fields := map[string]Value{
		"pubkey":     Bytes(pubkey),
		"expiration": U64(expiration),
	}
	if len(targets) > 0 {
		vs := make([]Value, len(targets))
		for i, t := range targets {
			vs[i] = Bytes(t)
		}
		fields["targets"] = Array(vs)
	}
	mapHash := HashValue(Map(fields))
	return HashWithDomain(delegationDomain, mapHash[:])
}

// HashSeed derives the Merkle seed for a user id: SHA256 of the user id's
// decimal string representation, encoded as UTF-8. External verifiers
// derive the same seed independently, so this must not be altered.
func HashSeed(userID uint64) Hash {
	return sha256.Sum256([]byte(strconv.FormatUint(userID, 10)))
}
