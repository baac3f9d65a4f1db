package square2d

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataSquare(t *testing.T) {
	result, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Width())
	assert.Equal(t, uint(2), result.ShareSize())

	cell, err := result.GetCell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, cell)
	cell, err = result.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8}, cell)
}

func TestNewDataSquareErrors(t *testing.T) {
	// non-square number of shares
	_, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}}, NewDefaultTree, 2)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	// uneven share sizes
	_, err = NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7}}, NewDefaultTree, 2)
	assert.ErrorIs(t, err, ErrUnevenChunks)

	// unset shares are allowed
	square, err := NewDataSquare([][]byte{{1, 2}, nil, {}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)
	cell, err := square.GetCell(0, 1)
	require.NoError(t, err)
	assert.Nil(t, cell)
}

func TestSetCell(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	// overwriting an occupied cell is allowed
	err = square.SetCell(0, 0, []byte{9, 10})
	require.NoError(t, err)
	cell, err := square.GetCell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 10}, cell)

	// both views observe the write
	col, err := square.Col(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 10}, col[0])

	// wrong share size
	err = square.SetCell(0, 0, []byte{42})
	assert.ErrorIs(t, err, ErrUnevenChunks)

	// a cell can be unset again with an empty share
	err = square.SetCell(0, 0, nil)
	require.NoError(t, err)
	cell, err = square.GetCell(0, 0)
	require.NoError(t, err)
	assert.Nil(t, cell)
}

func TestCellBounds(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	_, err = square.GetCell(2, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	_, err = square.GetCell(0, 2)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	err = square.SetCell(2, 0, []byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	_, err = square.Row(2)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	_, err = square.Col(2)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestRowColAccess(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	row, err := square.Row(1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{5, 6}, {7, 8}}, row)

	col, err := square.Col(1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{3, 4}, {7, 8}}, col)
}

func TestRoots(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	rowRoots, err := square.RowRoots()
	require.NoError(t, err)
	require.Len(t, rowRoots, 2)
	colRoots, err := square.ColRoots()
	require.NoError(t, err)
	require.Len(t, colRoots, 2)

	// roots are the commitment over the axis's shares in position order
	tree := NewDefaultTree(Row, 0)
	require.NoError(t, tree.Push([]byte{1, 2}))
	require.NoError(t, tree.Push([]byte{3, 4}))
	expected, err := tree.Root()
	require.NoError(t, err)
	assert.Equal(t, expected, rowRoots[0])

	// roots are memoized
	again, err := square.RowRoots()
	require.NoError(t, err)
	assert.Equal(t, rowRoots, again)
}

func TestIncompleteAxisRoots(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, nil, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	_, err = square.RowRoots()
	var incomplete *ErrIncompleteAxis
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, Row, incomplete.Axis)

	_, err = square.ColRoots()
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, Col, incomplete.Axis)
}

func TestRootInvalidation(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}, NewDefaultTree, 2)
	require.NoError(t, err)

	rowRoots, err := square.RowRoots()
	require.NoError(t, err)
	_, err = square.ColRoots()
	require.NoError(t, err)

	err = square.SetCell(0, 0, []byte{9, 10})
	require.NoError(t, err)

	// only the crossing axes are invalidated
	assert.Nil(t, square.rowRoots[0])
	assert.NotNil(t, square.rowRoots[1])
	assert.Nil(t, square.colRoots[0])
	assert.NotNil(t, square.colRoots[1])

	// a subsequent query reflects the new content
	newRowRoots, err := square.RowRoots()
	require.NoError(t, err)
	assert.NotEqual(t, rowRoots[0], newRowRoots[0])
	assert.Equal(t, rowRoots[1], newRowRoots[1])
}

func TestFlattened(t *testing.T) {
	shares := [][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	square, err := NewDataSquare(shares, NewDefaultTree, 2)
	require.NoError(t, err)

	flattened := square.Flattened()
	assert.Equal(t, shares, flattened)

	// no side effects: the square is unchanged by flattening
	flattened[0] = []byte{42, 42}
	cell, err := square.GetCell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, cell)
}

func TestExtendSquare(t *testing.T) {
	square, err := NewDataSquare([][]byte{{1, 2}}, NewDefaultTree, 2)
	require.NoError(t, err)

	err = square.extendSquare(1, []byte{0})
	assert.ErrorIs(t, err, ErrFillerChunkSizeMismatch)

	err = square.extendSquare(1, []byte{0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint(2), square.Width())
	cell, err := square.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, cell)
}

func TestIncompleteAxisError(t *testing.T) {
	err := error(&ErrIncompleteAxis{Axis: Row})
	assert.Equal(t, "cannot compute root of incomplete row", err.Error())
	assert.False(t, errors.Is(err, ErrInvalidChunkSize))
}
