package square2d

import (
	"errors"
	"fmt"

	"github.com/celestiaorg/go-square/merkle"
)

// DefaultTreeName is the name under which the default tree is registered.
var DefaultTreeName = "default-tree"

func init() {
	err := RegisterTree(DefaultTreeName, NewDefaultTree)
	if err != nil {
		panic(fmt.Sprintf("%s already registered", DefaultTreeName))
	}
}

var _ Tree = &DefaultTree{}

// DefaultTree is a plain sha256 Merkle tree over the pushed leaves. It
// ignores the axis and index, as the commitment does not depend on the
// position of the axis within the square.
type DefaultTree struct {
	leaves [][]byte
	root   []byte
}

func NewDefaultTree(_ Axis, _ uint) Tree {
	return &DefaultTree{
		leaves: make([][]byte, 0, 128),
	}
}

func (d *DefaultTree) Push(data []byte) error {
	if d.root != nil {
		return errors.New("tree is already finalized")
	}
	d.leaves = append(d.leaves, data)
	return nil
}

func (d *DefaultTree) Root() ([]byte, error) {
	if d.root == nil {
		d.root = merkle.HashFromByteSlices(d.leaves)
	}
	return d.root, nil
}
