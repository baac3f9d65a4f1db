// Package square2d implements a two dimensional Reed-Solomon Merkle tree
// data availability scheme: application data is laid out as a k×k square of
// fixed-size shares and extended to a 2k×2k square by erasure-coding every
// row and column independently. Each row and column is committed to with an
// independent Merkle tree, so a verifier can check individual shares without
// holding the whole square, and a holder of a partial square can repair it
// and prove the result matches what was originally committed.
package square2d

import (
	"fmt"
)

// ExtendedDataSquare represents an extended piece of data: a square of even
// width 2k whose top-left k×k quadrant is the original data and whose
// remaining quadrants hold the erasure-coded redundancy.
type ExtendedDataSquare struct {
	*DataSquare
	codec             Codec
	originalDataWidth uint
}

// ComputeExtendedDataSquare computes the extended data square for the given
// k² original shares, laid out in row-major order.
func ComputeExtendedDataSquare(
	data [][]byte,
	codec Codec,
	treeCreator TreeConstructorFn,
) (*ExtendedDataSquare, error) {
	if len(data) > codec.MaxChunks() {
		return nil, ErrTooManyChunks
	}

	shareSize := shareSizeOf(data)
	if err := codec.ValidateChunkSize(shareSize); err != nil {
		return nil, err
	}

	ds, err := NewDataSquare(data, treeCreator, uint(shareSize))
	if err != nil {
		return nil, err
	}

	eds := ExtendedDataSquare{DataSquare: ds, codec: codec}
	if err := eds.erasureExtendSquare(); err != nil {
		return nil, err
	}
	return &eds, nil
}

// ImportExtendedDataSquare imports an already-extended square, e.g. one
// received over the network, possibly with unset shares pending repair. No
// parity is recomputed; the relationship between the quadrants is assumed
// and only verified against trusted roots during Repair.
func ImportExtendedDataSquare(
	data [][]byte,
	codec Codec,
	treeCreator TreeConstructorFn,
) (*ExtendedDataSquare, error) {
	if len(data) > 4*codec.MaxChunks() {
		return nil, ErrTooManyChunks
	}

	ds, err := NewDataSquare(data, treeCreator, uint(shareSizeOf(data)))
	if err != nil {
		return nil, err
	}
	if ds.width == 0 || ds.width%2 != 0 {
		return nil, fmt.Errorf("%w: extended data square width must be even and non-zero, got %d",
			ErrInvalidChunkSize, ds.width)
	}

	return &ExtendedDataSquare{
		DataSquare:        ds,
		codec:             codec,
		originalDataWidth: ds.width / 2,
	}, nil
}

// OriginalDataWidth returns the width k of the original data square.
func (eds *ExtendedDataSquare) OriginalDataWidth() uint {
	return eds.originalDataWidth
}

// erasureExtendSquare extends the original square in place:
//
//	 ------- -------
//	|       |       |
//	|   O → |   E   |
//	|       |       |
//	 ------- -------
//	|   ↓       ↓   |
//	|   E       E   |
//	|       |       |
//	 ------- -------
//
// First every original row is encoded to fill the top-right quadrant, then
// every column of the now-complete top half is encoded to fill the bottom
// half.
func (eds *ExtendedDataSquare) erasureExtendSquare() error {
	eds.originalDataWidth = eds.width
	if err := eds.extendSquare(eds.width, make([]byte, eds.shareSize)); err != nil {
		return err
	}
	k := eds.originalDataWidth

	for i := uint(0); i < k; i++ {
		parity, err := eds.codec.Encode(eds.rowSlice(i, 0, k))
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		if err := eds.setRowSlice(i, k, parity); err != nil {
			return err
		}
	}

	for j := uint(0); j < eds.width; j++ {
		parity, err := eds.codec.Encode(eds.colSlice(0, j, k))
		if err != nil {
			return fmt.Errorf("encoding col %d: %w", j, err)
		}
		if err := eds.setColSlice(k, j, parity); err != nil {
			return err
		}
	}
	return nil
}

// shareSizeOf returns the length of the first set share, or 0 if all shares
// are unset.
func shareSizeOf(shares [][]byte) int {
	for _, share := range shares {
		if len(share) != 0 {
			return len(share)
		}
	}
	return 0
}
