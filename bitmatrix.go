package square2d

import "fmt"

// bitMatrix is a compact squareSize×squareSize bitmap. The repair loop uses
// it to track which cells of a square are known, so decode attempts are only
// made on axes that have reached the recovery threshold.
type bitMatrix struct {
	mask       []uint64
	squareSize int
}

func newBitMatrix(squareSize int) bitMatrix {
	bits := squareSize * squareSize
	return bitMatrix{mask: make([]uint64, (bits+63)/64), squareSize: squareSize}
}

func (bm bitMatrix) Get(row, col int) bool {
	assertValidIndices(row, col, bm.squareSize)
	idx := row*bm.squareSize + col
	return bm.mask[idx/64]&(uint64(1)<<uint(idx%64)) > 0
}

func (bm *bitMatrix) Set(row, col int) {
	assertValidIndices(row, col, bm.squareSize)
	idx := row*bm.squareSize + col
	bm.mask[idx/64] |= uint64(1) << uint(idx%64)
}

func (bm bitMatrix) RowIsOne(r int) bool {
	for c := 0; c < bm.squareSize; c++ {
		if !bm.Get(r, c) {
			return false
		}
	}
	return true
}

func (bm bitMatrix) ColumnIsOne(c int) bool {
	for r := 0; r < bm.squareSize; r++ {
		if !bm.Get(r, c) {
			return false
		}
	}
	return true
}

func (bm bitMatrix) NumOnesInRow(r int) int {
	var counter int
	for i := 0; i < bm.squareSize; i++ {
		if bm.Get(r, i) {
			counter++
		}
	}

	return counter
}

func (bm bitMatrix) NumOnesInCol(c int) int {
	var counter int
	for i := 0; i < bm.squareSize; i++ {
		if bm.Get(i, c) {
			counter++
		}
	}

	return counter
}

func assertValidIndices(row, col, squareSize int) {
	if row >= squareSize || col >= squareSize {
		panic(fmt.Sprintf("want: row < squareSize && col < squareSize, got: row: %v, col: %v, squareSize: %v", row, col, squareSize))
	}
}
