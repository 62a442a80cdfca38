package auditlog

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/forestrie/ic-siglog/internal/rih"
)

// ErrLeafOutOfRange is returned by Prove for an event index that was
// never appended.
var ErrLeafOutOfRange = errors.New("auditlog: leaf index out of range")

// Log is an append-only Merkle Mountain Range over directory mutation
// events. Nodes are stored in postorder append sequence: each leaf is
// followed by the interior nodes it completes, and every interior node
// commits its own position, so an event is bound to exactly one place in
// the log's history.
type Log struct {
	nodes []rih.Hash
}

// New returns an empty audit log.
func New() *Log {
	return &Log{}
}

// Size returns the node count. Together with Root it forms a checkpoint
// that CheckConsistency can later verify the log still extends.
func (l *Log) Size() uint64 {
	return uint64(len(l.nodes))
}

// Append records e as the next leaf, backfills the interior nodes the
// leaf completes, and returns the log size afterwards.
func (l *Log) Append(e Event) uint64 {
	l.nodes = append(l.nodes, HashEvent(e))
	i := uint64(len(l.nodes))
	height := uint64(0)
	for indexHeight(i) > height {
		left := l.nodes[i-(2<<height)]
		right := l.nodes[i-1]
		l.nodes = append(l.nodes, parentHash(i+1, left, right))
		i = uint64(len(l.nodes))
		height++
	}
	return i
}

// Root returns the log root: the peaks bagged from the lowest upwards.
// The zero Hash is returned for an empty log.
func (l *Log) Root() rih.Hash {
	return l.rootAt(l.Size())
}

// Proof shows an event's inclusion in the log state whose root the
// verifier holds.
type Proof struct {
	// LeafIndex is the event's position in append order.
	LeafIndex uint64
	// Size is the log size the proof was produced against.
	Size uint64
	// Path holds the sibling hashes climbing from the leaf to its peak.
	Path []rih.Hash
	// Peaks is the accumulator at Size, highest peak first. Bagging the
	// peaks reproduces the root; Path reproduces one of them.
	Peaks []rih.Hash
}

// Prove returns an inclusion proof for the leafIndex'th event against
// the current root.
func (l *Log) Prove(leafIndex uint64) (Proof, error) {
	size := l.Size()
	i := mmrIndex(leafIndex)
	if i >= size {
		return Proof{}, ErrLeafOutOfRange
	}

	var path []rih.Hash
	height := uint64(0)
	for {
		offset := (uint64(2) << height) - 1
		var sibling uint64
		if indexHeight(i+1) > height {
			// i is a right child; its sibling precedes it
			sibling = i - offset
			if sibling >= size {
				break
			}
			i++
		} else {
			sibling = i + offset
			if sibling >= size {
				break
			}
			i += 2 << height
		}
		path = append(path, l.nodes[sibling])
		height++
	}

	peaks := peakIndices(size)
	peakHashes := make([]rih.Hash, len(peaks))
	for pi, idx := range peaks {
		peakHashes[pi] = l.nodes[idx]
	}
	return Proof{LeafIndex: leafIndex, Size: size, Path: path, Peaks: peakHashes}, nil
}

// VerifyInclusion reports whether p shows that an event hashing to
// leafHash was appended at p.LeafIndex of the log whose root is root.
func VerifyInclusion(root, leafHash rih.Hash, p Proof) bool {
	peaks := peakIndices(p.Size)
	if len(peaks) == 0 || len(peaks) != len(p.Peaks) {
		return false
	}
	if bagPeaks(p.Peaks) != root {
		return false
	}
	i := mmrIndex(p.LeafIndex)
	if i >= p.Size {
		return false
	}
	got := climbToPeak(i, leafHash, p.Path)
	// peaks ascend in index order, so the peak spanning i is the first
	// one at or after it
	for pi, idx := range peaks {
		if idx >= i {
			return got == p.Peaks[pi]
		}
	}
	return false
}

// CheckConsistency verifies that the current log is an append-only
// extension of a previously observed (size, root) checkpoint: the
// checkpoint root must be reproducible from the current nodes. It
// returns the current root alongside the verdict so a caller tracking
// the log over time can roll its checkpoint forward.
func (l *Log) CheckConsistency(size uint64, root rih.Hash) (bool, rih.Hash) {
	if size == 0 || size > l.Size() {
		return false, rih.Hash{}
	}
	// a size that leaves an interior node unparented never terminated
	// this log
	if indexHeight(size) > indexHeight(size-1) {
		return false, rih.Hash{}
	}
	if l.rootAt(size) != root {
		return false, rih.Hash{}
	}
	return true, l.Root()
}

// indexHeight returns the height of the node at index i of the postorder
// append sequence: 0, 0, 1, 0, 0, 1, 2, ...
func indexHeight(i uint64) uint64 {
	pos := i + 1
	for !allOnes(pos) {
		pos -= (uint64(1) << (bits.Len64(pos) - 1)) - 1
	}
	return uint64(bits.Len64(pos) - 1)
}

func allOnes(pos uint64) bool {
	return pos == (uint64(1)<<bits.Len64(pos))-1
}

// mmrIndex returns the node index of the leafIndex'th leaf.
func mmrIndex(leafIndex uint64) uint64 {
	sum := uint64(0)
	for leafIndex > 0 {
		h := uint64(bits.Len64(leafIndex))
		sum += (uint64(1) << h) - 1
		leafIndex -= uint64(1) << (h - 1)
	}
	return sum
}

// peakIndices returns the indices of the peaks of a log with the given
// size, highest peak first (which is also ascending index order). size
// must terminate a complete log, which every size produced by Append
// does.
func peakIndices(size uint64) []uint64 {
	var peaks []uint64
	peakSize := (uint64(1) << bits.Len64(size)) - 1
	idx := uint64(0)
	for peakSize > 0 {
		if idx+peakSize <= size {
			peaks = append(peaks, idx+peakSize-1)
			idx += peakSize
		}
		peakSize >>= 1
	}
	return peaks
}

// parentHash commits the parent's one-based position alongside its
// children, binding every interior node to its place in the log.
func parentHash(pos uint64, left, right rih.Hash) rih.Hash {
	h := sha256.New()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], pos)
	h.Write(b[:])
	h.Write(left[:])
	h.Write(right[:])
	var out rih.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// climbToPeak recomputes the peak committing node index i from its hash
// and the sibling path, replaying the same position commitments Append
// made.
func climbToPeak(i uint64, node rih.Hash, path []rih.Hash) rih.Hash {
	height := indexHeight(i)
	for _, sibling := range path {
		if indexHeight(i+1) > height {
			i++
			node = parentHash(i+1, sibling, node)
		} else {
			i += 2 << height
			node = parentHash(i+1, node, sibling)
		}
		height++
	}
	return node
}

func (l *Log) rootAt(size uint64) rih.Hash {
	peaks := peakIndices(size)
	if len(peaks) == 0 {
		return rih.Hash{}
	}
	peakHashes := make([]rih.Hash, len(peaks))
	for pi, idx := range peaks {
		peakHashes[pi] = l.nodes[idx]
	}
	return bagPeaks(peakHashes)
}

// bagPeaks folds the accumulator into a single root, lowest peak first.
func bagPeaks(peaks []rih.Hash) rih.Hash {
	root := peaks[len(peaks)-1]
	for pi := len(peaks) - 2; pi >= 0; pi-- {
		h := sha256.New()
		h.Write(root[:])
		h.Write(peaks[pi][:])
		copy(root[:], h.Sum(nil))
	}
	return root
}
