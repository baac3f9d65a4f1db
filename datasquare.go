package square2d

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DataSquare stores the shares of an original (ODS) or extended (EDS) data
// square. Shares are kept in both row-major and column-major order to
// provide O(1) access to either axis. Per-axis Merkle roots are memoized and
// invalidated when the square is mutated.
//
// A share may be unset (nil or empty) pending repair. All set shares within
// one square have the same byte length.
type DataSquare struct {
	squareRow [][][]byte // row-major
	squareCol [][][]byte // col-major

	// dataMu guards the two storage views and the root caches as one unit:
	// no reader may observe one view updated and the other stale.
	dataMu sync.Mutex

	width     uint
	shareSize uint

	// rowRoots and colRoots are caches with one entry per axis. A nil entry
	// means not computed or invalidated by a write to that axis.
	rowRoots [][]byte
	colRoots [][]byte

	createTreeFn TreeConstructorFn
}

// NewDataSquare populates a square from the given row-major ordered shares.
// The share count must be a perfect square and every set share must be
// exactly shareSize bytes long. No root calculation is performed.
func NewDataSquare(shares [][]byte, treeCreator TreeConstructorFn, shareSize uint) (*DataSquare, error) {
	width := int(math.Ceil(math.Sqrt(float64(len(shares)))))
	if width*width != len(shares) {
		return nil, fmt.Errorf("%w: number of chunks must be a square number, got %d", ErrInvalidChunkSize, len(shares))
	}

	squareRow := make([][][]byte, width)
	for i := 0; i < width; i++ {
		squareRow[i] = make([][]byte, width)
		for j := 0; j < width; j++ {
			share := shares[i*width+j]
			if len(share) == 0 {
				continue
			}
			if len(share) != int(shareSize) {
				return nil, ErrUnevenChunks
			}
			squareRow[i][j] = share
		}
	}

	squareCol := make([][][]byte, width)
	for j := 0; j < width; j++ {
		squareCol[j] = make([][]byte, width)
		for i := 0; i < width; i++ {
			squareCol[j][i] = squareRow[i][j]
		}
	}

	return &DataSquare{
		squareRow:    squareRow,
		squareCol:    squareCol,
		width:        uint(width),
		shareSize:    shareSize,
		createTreeFn: treeCreator,
	}, nil
}

// Width returns the width of the square.
func (ds *DataSquare) Width() uint {
	return ds.width
}

// ShareSize returns the size in bytes of the shares of the square.
func (ds *DataSquare) ShareSize() uint {
	return ds.shareSize
}

// Row returns the shares of row idx in position order. Unset shares are nil.
// Do not modify the returned shares directly, instead use SetCell.
func (ds *DataSquare) Row(idx uint) ([][]byte, error) {
	if idx >= ds.width {
		return nil, fmt.Errorf("%w: row index %d out of range, width %d", ErrInvalidChunkSize, idx, ds.width)
	}
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	row := make([][]byte, ds.width)
	copy(row, ds.squareRow[idx])
	return row, nil
}

// Col returns the shares of column idx in position order. Unset shares are
// nil. Do not modify the returned shares directly, instead use SetCell.
func (ds *DataSquare) Col(idx uint) ([][]byte, error) {
	if idx >= ds.width {
		return nil, fmt.Errorf("%w: col index %d out of range, width %d", ErrInvalidChunkSize, idx, ds.width)
	}
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	col := make([][]byte, ds.width)
	copy(col, ds.squareCol[idx])
	return col, nil
}

// GetCell returns a copy of the share at (row, col), or nil if the cell is
// unset.
func (ds *DataSquare) GetCell(row, col uint) ([]byte, error) {
	if row >= ds.width || col >= ds.width {
		return nil, fmt.Errorf("%w: cell (%d, %d) out of range, width %d", ErrInvalidChunkSize, row, col, ds.width)
	}
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	share := ds.squareRow[row][col]
	if share == nil {
		return nil, nil
	}
	cell := make([]byte, ds.shareSize)
	copy(cell, share)
	return cell, nil
}

// SetCell sets the share at (row, col). The share must be empty or exactly
// shareSize bytes long. Both storage views are updated atomically and the
// cached roots of row `row` and column `col` are invalidated.
func (ds *DataSquare) SetCell(row, col uint, share []byte) error {
	if row >= ds.width || col >= ds.width {
		return fmt.Errorf("%w: cell (%d, %d) out of range, width %d", ErrInvalidChunkSize, row, col, ds.width)
	}
	if len(share) != 0 && len(share) != int(ds.shareSize) {
		return ErrUnevenChunks
	}

	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	if len(share) == 0 {
		share = nil
	}
	ds.squareRow[row][col] = share
	ds.squareCol[col][row] = share
	ds.invalidateRoots(row, col)
	return nil
}

// RowRoots returns the Merkle roots of all rows of the square, computing
// any missing roots. It errors with ErrIncompleteAxis if any row still has
// an unset share.
func (ds *DataSquare) RowRoots() ([][]byte, error) {
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	if err := ds.computeMissingRoots(Row); err != nil {
		return nil, err
	}
	return copyRoots(ds.rowRoots), nil
}

// ColRoots returns the Merkle roots of all columns of the square, computing
// any missing roots. It errors with ErrIncompleteAxis if any column still
// has an unset share.
func (ds *DataSquare) ColRoots() ([][]byte, error) {
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	if err := ds.computeMissingRoots(Col); err != nil {
		return nil, err
	}
	return copyRoots(ds.colRoots), nil
}

// Flattened returns the concatenated rows of the data square. Unset shares
// are nil.
func (ds *DataSquare) Flattened() [][]byte {
	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	flattened := make([][]byte, 0, ds.width*ds.width)
	for _, row := range ds.squareRow {
		flattened = append(flattened, row...)
	}
	return flattened
}

// extendSquare grows the square by extendedWidth in both dimensions and
// fills the new cells with fillerShare.
func (ds *DataSquare) extendSquare(extendedWidth uint, fillerShare []byte) error {
	if uint(len(fillerShare)) != ds.shareSize {
		return ErrFillerChunkSizeMismatch
	}

	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	newWidth := ds.width + extendedWidth
	newSquareRow := make([][][]byte, newWidth)
	for i := uint(0); i < newWidth; i++ {
		newSquareRow[i] = make([][]byte, newWidth)
		for j := uint(0); j < newWidth; j++ {
			if i < ds.width && j < ds.width {
				newSquareRow[i][j] = ds.squareRow[i][j]
			} else {
				newSquareRow[i][j] = fillerShare
			}
		}
	}

	newSquareCol := make([][][]byte, newWidth)
	for j := uint(0); j < newWidth; j++ {
		newSquareCol[j] = make([][]byte, newWidth)
		for i := uint(0); i < newWidth; i++ {
			newSquareCol[j][i] = newSquareRow[i][j]
		}
	}

	ds.squareRow = newSquareRow
	ds.squareCol = newSquareCol
	ds.width = newWidth
	ds.rowRoots = nil
	ds.colRoots = nil
	return nil
}

// rowSlice returns the shares [from, from+length) of row idx without
// locking. Callers must exclude writers, e.g. single-threaded use during
// construction.
func (ds *DataSquare) rowSlice(idx, from, length uint) [][]byte {
	return ds.squareRow[idx][from : from+length]
}

// colSlice returns the shares [from, from+length) of column idx without
// locking. Callers must exclude writers, e.g. single-threaded use during
// construction.
func (ds *DataSquare) colSlice(from, idx, length uint) [][]byte {
	return ds.squareCol[idx][from : from+length]
}

// setRowSlice writes newShares into row idx starting at position from,
// updating both views and invalidating the crossing root caches.
func (ds *DataSquare) setRowSlice(idx, from uint, newShares [][]byte) error {
	for _, share := range newShares {
		if len(share) != int(ds.shareSize) {
			return ErrUnevenChunks
		}
	}
	if from+uint(len(newShares)) > ds.width {
		return fmt.Errorf("%w: cannot set row slice at (%d, %d) of length %d in square of width %d",
			ErrInvalidChunkSize, idx, from, len(newShares), ds.width)
	}

	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	for i := uint(0); i < uint(len(newShares)); i++ {
		ds.squareRow[idx][from+i] = newShares[i]
		ds.squareCol[from+i][idx] = newShares[i]
		ds.invalidateRoots(idx, from+i)
	}
	return nil
}

// setColSlice writes newShares into column idx starting at position from,
// updating both views and invalidating the crossing root caches.
func (ds *DataSquare) setColSlice(from, idx uint, newShares [][]byte) error {
	for _, share := range newShares {
		if len(share) != int(ds.shareSize) {
			return ErrUnevenChunks
		}
	}
	if from+uint(len(newShares)) > ds.width {
		return fmt.Errorf("%w: cannot set col slice at (%d, %d) of length %d in square of width %d",
			ErrInvalidChunkSize, from, idx, len(newShares), ds.width)
	}

	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	for i := uint(0); i < uint(len(newShares)); i++ {
		ds.squareRow[from+i][idx] = newShares[i]
		ds.squareCol[idx][from+i] = newShares[i]
		ds.invalidateRoots(from+i, idx)
	}
	return nil
}

// fillAxis writes the full decoded share vector of one axis into the square,
// only touching cells that are still unset. Callers must have verified the
// vector against the axis's trusted root beforehand.
func (ds *DataSquare) fillAxis(axis Axis, idx uint, shares [][]byte) error {
	for _, share := range shares {
		if len(share) != int(ds.shareSize) {
			return ErrUnevenChunks
		}
	}

	ds.dataMu.Lock()
	defer ds.dataMu.Unlock()

	for i := uint(0); i < uint(len(shares)); i++ {
		row, col := idx, i
		if axis == Col {
			row, col = i, idx
		}
		if ds.squareRow[row][col] != nil {
			continue
		}
		ds.squareRow[row][col] = shares[i]
		ds.squareCol[col][row] = shares[i]
		ds.invalidateRoots(row, col)
	}
	return nil
}

// invalidateRoots drops the cached roots crossing cell (row, col). Callers
// must hold dataMu.
func (ds *DataSquare) invalidateRoots(row, col uint) {
	if ds.rowRoots != nil {
		ds.rowRoots[row] = nil
	}
	if ds.colRoots != nil {
		ds.colRoots[col] = nil
	}
}

// computeMissingRoots fills the nil entries of an axis's root cache. Each
// missing root is computed by feeding that axis's shares in position order
// into a fresh tree. Callers must hold dataMu.
func (ds *DataSquare) computeMissingRoots(axis Axis) error {
	roots := ds.rowRoots
	if axis == Col {
		roots = ds.colRoots
	}
	if roots == nil {
		roots = make([][]byte, ds.width)
	}

	var g errgroup.Group
	for i := uint(0); i < ds.width; i++ {
		if roots[i] != nil {
			continue
		}
		i := i
		g.Go(func() error {
			root, err := ds.axisRoot(axis, i)
			if err != nil {
				return err
			}
			roots[i] = root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if axis == Col {
		ds.colRoots = roots
	} else {
		ds.rowRoots = roots
	}
	return nil
}

// axisRoot computes the root of one complete axis. Callers must hold dataMu.
func (ds *DataSquare) axisRoot(axis Axis, idx uint) ([]byte, error) {
	shares := ds.squareRow[idx]
	if axis == Col {
		shares = ds.squareCol[idx]
	}
	if !isComplete(shares) {
		return nil, &ErrIncompleteAxis{Axis: axis}
	}

	tree := ds.createTreeFn(axis, idx)
	for _, share := range shares {
		if err := tree.Push(share); err != nil {
			return nil, fmt.Errorf("pushing share to %s %d tree: %w", axis, idx, err)
		}
	}
	return tree.Root()
}

// isComplete returns true if all the shares are set.
func isComplete(shares [][]byte) bool {
	for _, share := range shares {
		if share == nil {
			return false
		}
	}
	return true
}

func copyRoots(roots [][]byte) [][]byte {
	out := make([][]byte, len(roots))
	for i, root := range roots {
		out[i] = make([]byte, len(root))
		copy(out[i], root)
	}
	return out
}
