package square2d

import (
	"testing"

	"github.com/celestiaorg/go-square/merkle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRegistry(t *testing.T) {
	err := RegisterTree("test-tree", NewDefaultTree)
	require.NoError(t, err)
	err = RegisterTree("test-tree", NewDefaultTree)
	assert.Error(t, err)

	treeFn, err := TreeFn("test-tree")
	require.NoError(t, err)
	assert.NotNil(t, treeFn)

	_, err = TreeFn("no-such-tree")
	assert.Error(t, err)

	fromDefault, err := TreeFn(DefaultTreeName)
	require.NoError(t, err)
	assert.NotNil(t, fromDefault)
}

func TestDefaultTree(t *testing.T) {
	leaves := [][]byte{{1, 2}, {3, 4}, {5, 6}}

	tree := NewDefaultTree(Row, 0)
	for _, leaf := range leaves {
		require.NoError(t, tree.Push(leaf))
	}
	root, err := tree.Root()
	require.NoError(t, err)
	assert.Equal(t, merkle.HashFromByteSlices(leaves), root)

	// the root is order-sensitive
	reversed := NewDefaultTree(Row, 0)
	for i := len(leaves) - 1; i >= 0; i-- {
		require.NoError(t, reversed.Push(leaves[i]))
	}
	reversedRoot, err := reversed.Root()
	require.NoError(t, err)
	assert.NotEqual(t, root, reversedRoot)

	// finalized trees reject further leaves
	assert.Error(t, tree.Push([]byte{7, 8}))
}
