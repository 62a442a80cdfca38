package siglog

import (
	"bytes"
	"crypto/sha256"
)

// NodeKind discriminates the five labeled-tree node shapes: Empty, Fork,
// Labeled, Leaf, Pruned.
type NodeKind uint8

const (
	KindEmpty NodeKind = iota
	KindFork
	KindLabeled
	KindLeaf
	KindPruned
)

// Discriminator bytes for Empty, Fork and Leaf hashing: a single fixed
// prefix byte per node kind keeps the three shapes from colliding.
// Labeled nodes use the length-prefixed label rule in LabeledHash instead.
const (
	leafPrefix  = 0x00
	forkPrefix  = 0x01
	emptyPrefix = 0x02
)

// Node is an immutable labeled-tree node. The zero value is not valid;
// construct nodes with the emptyNode/fork/labeled/leaf/pruned helpers.
type Node struct {
	kind   NodeKind
	left   *Node
	right  *Node
	label  []byte
	child  *Node
	leaf   []byte
	hashed Hash
}

func emptyNode() *Node {
	return &Node{kind: KindEmpty}
}

func fork(l, r *Node) *Node {
	return &Node{kind: KindFork, left: l, right: r}
}

func labeled(label []byte, child *Node) *Node {
	return &Node{kind: KindLabeled, label: label, child: child}
}

func leaf(b []byte) *Node {
	return &Node{kind: KindLeaf, leaf: b}
}

func pruned(h Hash) *Node {
	return &Node{kind: KindPruned, hashed: h}
}

// Label wraps child in a Labeled node. Callers use this to prefix a
// witness with a certification-scope label (e.g. "sig") before
// serializing it, matching the host platform's own hash-tree
// representation of a certified subtree.
func Label(label []byte, child *Node) *Node {
	return labeled(label, child)
}

// Kind reports the node's shape.
func (n *Node) Kind() NodeKind { return n.kind }

// Left and Right return the children of a Fork node.
func (n *Node) Left() *Node  { return n.left }
func (n *Node) Right() *Node { return n.right }

// Label and Child return the label and subtree of a Labeled node.
func (n *Node) Label() []byte { return n.label }
func (n *Node) Child() *Node  { return n.child }

// LeafBytes returns the bytes carried by a Leaf node.
func (n *Node) LeafBytes() []byte { return n.leaf }

// PrunedHash returns the stored hash of a Pruned node.
func (n *Node) PrunedHash() Hash { return n.hashed }

// HashNode computes the node's hash: Pruned(h) hashes as h; Empty, Fork and
// Leaf hash with a fixed one-byte discriminator prefix; Labeled hashes as
// SHA256(len_leb128(label) || label || H(child)). The same function serves
// both tree construction (computing the root) and witness verification: a
// witness reconstructs to the root iff HashNode(witness) equals it.
func HashNode(n *Node) Hash {
	switch n.kind {
	case KindPruned:
		return n.hashed
	case KindEmpty:
		return sha256.Sum256([]byte{emptyPrefix})
	case KindLeaf:
		h := sha256.New()
		h.Write([]byte{leafPrefix})
		h.Write(n.leaf)
		var out Hash
		copy(out[:], h.Sum(nil))
		return out
	case KindFork:
		lh := HashNode(n.left)
		rh := HashNode(n.right)
		h := sha256.New()
		h.Write([]byte{forkPrefix})
		h.Write(lh[:])
		h.Write(rh[:])
		var out Hash
		copy(out[:], h.Sum(nil))
		return out
	case KindLabeled:
		ch := HashNode(n.child)
		return LabeledHash(n.label, ch)
	default:
		panic("siglog: unknown node kind")
	}
}

// LabeledHash computes SHA256(len_leb128(label) || label || h), the edge
// hashing rule for Labeled tree nodes, also used to prefix the root before
// it is published as certified data.
func LabeledHash(label []byte, h Hash) Hash {
	hh := sha256.New()
	hh.Write(lenLEB128(len(label)))
	hh.Write(label)
	hh.Write(h[:])
	var out Hash
	copy(out[:], hh.Sum(nil))
	return out
}

// lenLEB128 encodes a non-negative length as unsigned LEB128. Labels in
// this system (field names, 32-byte seeds and message hashes, and the
// "sig" certification prefix) are always short, so a single byte suffices
// in practice, but the full encoding is used for generality.
func lenLEB128(n int) []byte {
	return leb128(uint64(n))
}

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

// leafEntry pairs a sort key with the subtree rooted there, used to build
// both the outer (seed-keyed) and inner (msg-keyed) levels with the same
// generic balanced-tree and witness-path logic.
type leafEntry struct {
	key  []byte
	node *Node
}

// buildBalanced constructs a deterministic binary tree over sorted
// entries. Root hash depends only on the entry set: empty is Empty, a
// single entry is Labeled(key, node), and more than one splits evenly into
// a Fork of two balanced subtrees. This keeps witness paths O(log n).
func buildBalanced(entries []leafEntry) *Node {
	switch len(entries) {
	case 0:
		return emptyNode()
	case 1:
		return labeled(entries[0].key, entries[0].node)
	default:
		mid := len(entries) / 2
		return fork(buildBalanced(entries[:mid]), buildBalanced(entries[mid:]))
	}
}

// buildPrunedPath constructs the same tree as buildBalanced, except every
// subtree not on the path to targetKey is collapsed to Pruned(its hash).
// atTarget builds the (possibly further pruned, for nested levels) node to
// embed at the matching entry; it is called exactly once, only if
// targetKey is present in entries. found reports whether targetKey was
// present.
func buildPrunedPath(entries []leafEntry, targetKey []byte, atTarget func(leafEntry) *Node) (_ *Node, found bool) {
	switch len(entries) {
	case 0:
		return emptyNode(), false
	case 1:
		if bytes.Equal(entries[0].key, targetKey) {
			return atTarget(entries[0]), true
		}
		return pruned(HashNode(labeled(entries[0].key, entries[0].node))), false
	default:
		mid := len(entries) / 2
		if bytes.Compare(targetKey, entries[mid].key) < 0 {
			left, found := buildPrunedPath(entries[:mid], targetKey, atTarget)
			right := pruned(HashNode(buildBalanced(entries[mid:])))
			return fork(left, right), found
		}
		right, found := buildPrunedPath(entries[mid:], targetKey, atTarget)
		left := pruned(HashNode(buildBalanced(entries[:mid])))
		return fork(left, right), found
	}
}
