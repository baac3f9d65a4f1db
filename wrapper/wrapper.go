// Package wrapper provides a namespaced Merkle tree accumulator for
// square2d. Shares in the original quadrant keep their own namespace while
// every share in an extended quadrant is committed under the maximum
// (parity) namespace, so namespace queries over the roots skip redundancy
// data.
package wrapper

import (
	"bytes"
	"fmt"

	"github.com/celestiaorg/nmt"
	"github.com/celestiaorg/nmt/namespace"
	"github.com/minio/sha256-simd"

	"github.com/celestiaorg/square2d"
)

var _ square2d.Tree = &ErasuredNamespacedMerkleTree{}

// ErasuredNamespacedMerkleTree wraps an nmt.NamespacedMerkleTree to conform
// to the square2d.Tree interface while providing the correct namespace for
// each pushed share: the share's own namespace inside the original data
// square, the parity namespace everywhere else.
type ErasuredNamespacedMerkleTree struct {
	// squareSize is the width of the original square before erasure coding.
	squareSize uint64
	// axisIndex is the index of the row or column this tree commits to.
	// Together with shareIndex it determines which quadrant a leaf is in.
	axisIndex uint64
	// shareIndex is the position of the next pushed share within the axis.
	shareIndex uint64

	namespaceSize   int
	parityNamespace []byte
	tree            *nmt.NamespacedMerkleTree
}

// NewErasuredNamespacedMerkleTree creates a tree for one axis of a square of
// original width squareSize. The namespace size is read from the given nmt
// options; ignoreMaxNamespace is always enabled so parity leaves do not
// widen the root's namespace range.
func NewErasuredNamespacedMerkleTree(squareSize uint64, axisIndex uint, options ...nmt.Option) ErasuredNamespacedMerkleTree {
	if squareSize == 0 {
		panic("cannot create an ErasuredNamespacedMerkleTree of squareSize == 0")
	}

	opts := &nmt.Options{}
	for _, setter := range options {
		setter(opts)
	}
	options = append(options, nmt.IgnoreMaxNamespace(true))

	namespaceSize := int(opts.NamespaceIDSize)
	return ErasuredNamespacedMerkleTree{
		squareSize:      squareSize,
		axisIndex:       uint64(axisIndex),
		namespaceSize:   namespaceSize,
		parityNamespace: bytes.Repeat([]byte{0xFF}, namespaceSize),
		tree:            nmt.New(sha256.New(), options...),
	}
}

type constructor struct {
	squareSize uint64
	opts       []nmt.Option
}

// NewConstructor creates a square2d.TreeConstructorFn for a square of
// original width squareSize.
func NewConstructor(squareSize uint64, opts ...nmt.Option) square2d.TreeConstructorFn {
	return constructor{
		squareSize: squareSize,
		opts:       opts,
	}.NewTree
}

// NewTree creates a new ErasuredNamespacedMerkleTree for the given axis with
// the constructor's predefined square size and nmt options.
func (c constructor) NewTree(_ square2d.Axis, axisIndex uint) square2d.Tree {
	tree := NewErasuredNamespacedMerkleTree(c.squareSize, axisIndex, c.opts...)
	return &tree
}

// Push adds data to the underlying tree, prefixed with the data's own
// namespace inside quadrant zero and with the parity namespace otherwise.
// Shares must be pushed in ascending position order.
func (w *ErasuredNamespacedMerkleTree) Push(data []byte) error {
	if w.axisIndex+1 > 2*w.squareSize || w.shareIndex+1 > 2*w.squareSize {
		return fmt.Errorf("pushed past predetermined square size: boundary at %d index at %d %d",
			2*w.squareSize, w.axisIndex, w.shareIndex)
	}
	if len(data) < w.namespaceSize {
		return fmt.Errorf("data is too short to contain namespace ID")
	}

	nidAndData := make([]byte, w.namespaceSize+len(data))
	copy(nidAndData[w.namespaceSize:], data)
	if w.isQuadrantZero() {
		copy(nidAndData[:w.namespaceSize], data[:w.namespaceSize])
	} else {
		copy(nidAndData[:w.namespaceSize], w.parityNamespace)
	}

	if err := w.tree.Push(namespace.PrefixedData(nidAndData)); err != nil {
		return err
	}
	w.shareIndex++
	return nil
}

// Root returns the namespaced root of the underlying tree.
func (w *ErasuredNamespacedMerkleTree) Root() ([]byte, error) {
	return w.tree.Root()
}

// isQuadrantZero returns true while the tree is still within the original
// data square, i.e. both the axis and the next share position are below the
// original width.
func (w *ErasuredNamespacedMerkleTree) isQuadrantZero() bool {
	return w.shareIndex < w.squareSize && w.axisIndex < w.squareSize
}
