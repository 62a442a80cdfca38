package siglog

import (
	"bytes"
	"crypto/sha256"
	"sort"
)

// SignatureMap is a mutable container keyed by (seed, msg) holding expiry
// timestamps, backed by a two-level labeled Merkle tree (outer level keyed
// by seed, inner level keyed by msg) plus an expiration index for
// O(k log n) pruning.
//
// SignatureMap is not safe for concurrent use; callers needing concurrent
// access (directory.Service does) must hold their own lock.
type SignatureMap struct {
	records map[Hash]map[Hash]Expiry
	index   *expiryIndex
}

// NewSignatureMap returns an empty signature map.
func NewSignatureMap() *SignatureMap {
	return &SignatureMap{
		records: make(map[Hash]map[Hash]Expiry),
		index:   newExpiryIndex(),
	}
}

// Put inserts or overwrites the record at (seed, msg), setting its expiry
// and updating the root. If the key already existed, its prior expiry
// entry is removed from the index first.
func (m *SignatureMap) Put(seed, msg Hash, expiry Expiry) {
	byMsg, ok := m.records[seed]
	if !ok {
		byMsg = make(map[Hash]Expiry)
		m.records[seed] = byMsg
	}
	if old, existed := byMsg[msg]; existed {
		m.index.remove(seed, msg, old)
	}
	byMsg[msg] = expiry
	m.index.insert(seed, msg, expiry)
}

// Delete removes the record at (seed, msg), if present.
func (m *SignatureMap) Delete(seed, msg Hash) {
	byMsg, ok := m.records[seed]
	if !ok {
		return
	}
	expiry, ok := byMsg[msg]
	if !ok {
		return
	}
	delete(byMsg, msg)
	if len(byMsg) == 0 {
		delete(m.records, seed)
	}
	m.index.remove(seed, msg, expiry)
}

// PruneExpired removes up to max records with expiry <= now, in ascending
// expiry order, and returns the number removed.
func (m *SignatureMap) PruneExpired(now Expiry, max int) int {
	removed := m.index.pruneExpired(now, max)
	for _, item := range removed {
		byMsg := m.records[item.seed]
		delete(byMsg, item.msg)
		if len(byMsg) == 0 {
			delete(m.records, item.seed)
		}
	}
	return len(removed)
}

// RootHash computes the current Merkle root over every (seed, msg, expiry)
// triple in the map. The result depends only on the record set, never on
// the order Put/Delete were called in.
func (m *SignatureMap) RootHash() Hash {
	return HashNode(m.buildOuter())
}

// Witness returns a pruned tree proving (seed, msg)'s membership (and its
// expiry) if present, along with true; it returns (nil, false) if the key
// is absent. No absence proof is attempted, so callers cannot distinguish
// "wrong seed" from "wrong msg".
func (m *SignatureMap) Witness(seed, msg Hash) (*Node, bool) {
	// Checked up front so the inner atTarget callback below never needs to
	// report its own not-found case: it always runs against a seed that is
	// known to hold msg.
	if !m.hasMsg(seed, msg) {
		return nil, false
	}
	outer := m.outerEntries()
	w, found := buildPrunedPath(outer, seed[:], func(e leafEntry) *Node {
		inner := m.innerEntries(seed)
		innerWitness, _ := buildPrunedPath(inner, msg[:], func(ie leafEntry) *Node {
			return labeled(ie.key, ie.node)
		})
		return labeled(e.key, innerWitness)
	})
	if !found {
		return nil, false
	}
	return w, true
}

func (m *SignatureMap) hasMsg(seed, msg Hash) bool {
	byMsg, ok := m.records[seed]
	if !ok {
		return false
	}
	_, ok = byMsg[msg]
	return ok
}

// leafValue encodes the leaf value at a message key: SHA256(leb128(expiry)).
func leafValue(expiry Expiry) []byte {
	sum := sha256.Sum256(leb128(uint64(expiry)))
	return sum[:]
}

func (m *SignatureMap) innerEntries(seed Hash) []leafEntry {
	byMsg := m.records[seed]
	entries := make([]leafEntry, 0, len(byMsg))
	for msg, expiry := range byMsg {
		entries = append(entries, leafEntry{
			key:  append([]byte(nil), msg[:]...),
			node: leaf(leafValue(expiry)),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	return entries
}

func (m *SignatureMap) outerEntries() []leafEntry {
	entries := make([]leafEntry, 0, len(m.records))
	for seed := range m.records {
		entries = append(entries, leafEntry{
			key:  append([]byte(nil), seed[:]...),
			node: m.buildInner(seed),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	return entries
}

func (m *SignatureMap) buildInner(seed Hash) *Node {
	return buildBalanced(m.innerEntries(seed))
}

func (m *SignatureMap) buildOuter() *Node {
	return buildBalanced(m.outerEntries())
}
