package siglog

import (
	"bytes"

	"github.com/google/btree"
)

// expiryItem is one (expiry, seed, msg) tuple in the expiration index: an
// ordered sequence permitting O(k log n) removal of the k
// earliest-expiring entries. Ties on expiry are broken by seed bytes, then
// msg bytes, giving a total, deterministic order so pruning removes the
// same records on every replica.
type expiryItem struct {
	expiry Expiry
	seed   Hash
	msg    Hash
}

func (a expiryItem) Less(than btree.Item) bool {
	b := than.(expiryItem)
	if a.expiry != b.expiry {
		return a.expiry < b.expiry
	}
	if c := bytes.Compare(a.seed[:], b.seed[:]); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.msg[:], b.msg[:]) < 0
}

// expiryIndex wraps a btree.BTree restricted to the operations SM needs:
// insert, exact-tuple removal, and ascending walk-and-remove for pruning.
type expiryIndex struct {
	tree *btree.BTree
}

func newExpiryIndex() *expiryIndex {
	return &expiryIndex{tree: btree.New(32)}
}

func (x *expiryIndex) insert(seed, msg Hash, expiry Expiry) {
	x.tree.ReplaceOrInsert(expiryItem{expiry: expiry, seed: seed, msg: msg})
}

func (x *expiryIndex) remove(seed, msg Hash, expiry Expiry) {
	x.tree.Delete(expiryItem{expiry: expiry, seed: seed, msg: msg})
}

// pruneExpired removes up to max entries with expiry <= now, in ascending
// expiry order, and reports their (seed, msg) keys so the caller can
// delete the corresponding Merkle leaves and records.
func (x *expiryIndex) pruneExpired(now Expiry, max int) []expiryItem {
	var removed []expiryItem
	for len(removed) < max {
		min := x.tree.Min()
		if min == nil {
			break
		}
		item := min.(expiryItem)
		if item.expiry > now {
			break
		}
		x.tree.Delete(item)
		removed = append(removed, item)
	}
	return removed
}
