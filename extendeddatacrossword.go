package square2d

import (
	"bytes"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("square2d")

// Repair attempts to repair an incomplete extended data square. rowRoots and
// colRoots are the trusted Merkle roots for each row and column; every axis
// decoded during repair is verified against them before its shares are
// committed to the square. Missing shares in the square must be unset.
//
// The square is modified in place. On success it is complete. On
// ErrByzantineData the square holds every axis solved before the byzantine
// one was detected, and the error carries the offending decoded axis as
// evidence. On ErrUnrepairableDataSquare too few shares are present for the
// crossword iteration to make progress.
func (eds *ExtendedDataSquare) Repair(rowRoots, colRoots [][]byte) error {
	if err := eds.preRepairSanityCheck(rowRoots, colRoots); err != nil {
		return err
	}
	return eds.solveCrossword(rowRoots, colRoots)
}

// preRepairSanityCheck validates the trusted root lists and verifies every
// axis that is already complete before the repair loop runs: its root must
// reproduce the trusted root, and re-encoding its first half must reproduce
// its parity half. Complete axes are scanned rows first, then columns, in
// ascending index order.
func (eds *ExtendedDataSquare) preRepairSanityCheck(rowRoots, colRoots [][]byte) error {
	if uint(len(rowRoots)) != eds.width {
		return fmt.Errorf("%w: expected %d row roots, got %d", ErrInvalidChunkSize, eds.width, len(rowRoots))
	}
	if uint(len(colRoots)) != eds.width {
		return fmt.Errorf("%w: expected %d col roots, got %d", ErrInvalidChunkSize, eds.width, len(colRoots))
	}

	for i := uint(0); i < eds.width; i++ {
		if !isComplete(eds.squareRow[i]) {
			continue
		}
		if err := eds.verifyCompleteAxis(Row, i, rowRoots[i]); err != nil {
			return err
		}
	}
	for i := uint(0); i < eds.width; i++ {
		if !isComplete(eds.squareCol[i]) {
			continue
		}
		if err := eds.verifyCompleteAxis(Col, i, colRoots[i]); err != nil {
			return err
		}
	}
	return nil
}

// verifyCompleteAxis checks a fully-present axis against its trusted root
// and confirms the axis is a codeword: encoding its first half must yield
// its parity half. Either mismatch is byzantine evidence.
func (eds *ExtendedDataSquare) verifyCompleteAxis(axis Axis, idx uint, trustedRoot []byte) error {
	shares := make([][]byte, eds.width)
	if axis == Row {
		copy(shares, eds.squareRow[idx])
	} else {
		copy(shares, eds.squareCol[idx])
	}

	root, err := eds.computeSharesRoot(shares, axis, idx)
	if err != nil || !bytes.Equal(root, trustedRoot) {
		// an error computing the root also signifies an issue in the shares,
		// e.g. out of order namespaces
		log.Warnw("complete axis does not match trusted root", "axis", axis, "index", idx)
		return &ErrByzantineData{Axis: axis, Index: idx, Shares: shares}
	}

	k := eds.originalDataWidth
	parity, err := eds.codec.Encode(shares[:k])
	if err != nil {
		return fmt.Errorf("encoding %s %d: %w", axis, idx, err)
	}
	for i, share := range parity {
		if !bytes.Equal(share, shares[k+uint(i)]) {
			log.Warnw("complete axis is not a codeword", "axis", axis, "index", idx)
			return &ErrByzantineData{Axis: axis, Index: idx, Shares: shares}
		}
	}
	return nil
}

// solveCrossword iteratively repairs the square: per pass, every pending row
// in ascending index order, then every pending column. Solving a row can
// raise columns above the recovery threshold and vice versa, so passes
// repeat until the square is solved or a full pass makes no progress.
func (eds *ExtendedDataSquare) solveCrossword(rowRoots, colRoots [][]byte) error {
	width := int(eds.width)

	// known tracks set cells; the repair loop reads it instead of rescanning
	// the square before every decode attempt.
	known := newBitMatrix(width)
	for r := 0; r < width; r++ {
		for c := 0; c < width; c++ {
			if eds.squareRow[r][c] != nil {
				known.Set(r, c)
			}
		}
	}

	// axes complete at this point were root-verified by preRepairSanityCheck;
	// axes completed later are verified before their shares are committed
	solvedRows := make([]bool, width)
	solvedCols := make([]bool, width)
	for i := 0; i < width; i++ {
		solvedRows[i] = known.RowIsOne(i)
		solvedCols[i] = known.ColumnIsOne(i)
	}

	for pass := 0; ; pass++ {
		progress := false

		for r := 0; r < width; r++ {
			if solvedRows[r] {
				continue
			}
			solved, err := eds.solveAxis(Row, uint(r), rowRoots, colRoots, &known)
			if err != nil {
				return err
			}
			if solved {
				solvedRows[r] = true
				progress = true
				// a completed row may have completed some columns as well
				for c := 0; c < width; c++ {
					solvedCols[c] = solvedCols[c] || known.ColumnIsOne(c)
				}
			}
		}

		for c := 0; c < width; c++ {
			if solvedCols[c] {
				continue
			}
			solved, err := eds.solveAxis(Col, uint(c), rowRoots, colRoots, &known)
			if err != nil {
				return err
			}
			if solved {
				solvedCols[c] = true
				progress = true
				for r := 0; r < width; r++ {
					solvedRows[r] = solvedRows[r] || known.RowIsOne(r)
				}
			}
		}

		if allSolved(solvedRows) && allSolved(solvedCols) {
			log.Debugw("repaired data square", "width", width, "passes", pass+1)
			return nil
		}
		if !progress {
			return ErrUnrepairableDataSquare
		}
	}
}

// solveAxis attempts to decode and verify one pending axis. It returns true
// when the axis was decoded, root-verified and committed to the square. A
// decode below the recovery threshold, or a failed decode, is no progress
// and no error; a root mismatch is terminal byzantine evidence. Crossing
// axes that the solve completes are verified against their own trusted
// roots before any share is committed.
func (eds *ExtendedDataSquare) solveAxis(axis Axis, idx uint, rowRoots, colRoots [][]byte, known *bitMatrix) (bool, error) {
	knownShares := known.NumOnesInRow(int(idx))
	if axis == Col {
		knownShares = known.NumOnesInCol(int(idx))
	}
	if uint(knownShares) < eds.originalDataWidth {
		return false, nil
	}

	roots := rowRoots
	if axis == Col {
		roots = colRoots
	}

	shares := make([][]byte, eds.width)
	if axis == Row {
		copy(shares, eds.squareRow[idx])
	} else {
		copy(shares, eds.squareCol[idx])
	}

	decoded, err := eds.codec.Decode(shares)
	if err != nil {
		// A failed decode halts this axis, not the whole repair: the crossing
		// passes may still supply the shares it is missing.
		log.Debugw("decode failed", "axis", axis, "index", idx, "err", err)
		return false, nil
	}

	root, err := eds.computeSharesRoot(decoded, axis, idx)
	if err != nil || !bytes.Equal(root, roots[idx]) {
		log.Warnw("repaired data does not match trusted root", "axis", axis, "index", idx)
		return false, &ErrByzantineData{Axis: axis, Index: idx, Shares: decoded}
	}

	if err := eds.verifyCompletedCrossings(axis, idx, decoded, rowRoots, colRoots); err != nil {
		return false, err
	}

	if err := eds.fillAxis(axis, idx, decoded); err != nil {
		return false, err
	}
	for i := 0; i < int(eds.width); i++ {
		if axis == Row {
			known.Set(int(idx), i)
		} else {
			known.Set(i, int(idx))
		}
	}
	log.Debugw("solved axis", "axis", axis, "index", idx)
	return true, nil
}

// verifyCompletedCrossings checks every crossing axis that committing the
// decoded shares would complete. For each position the solve is about to
// fill, the crossing axis with the decoded share in place must reproduce
// its trusted root; a mismatch is byzantine evidence against the crossing
// axis. Crossings that stay incomplete are verified when they are solved.
func (eds *ExtendedDataSquare) verifyCompletedCrossings(axis Axis, idx uint, decoded [][]byte, rowRoots, colRoots [][]byte) error {
	crossAxis := Col
	crossRoots := colRoots
	if axis == Col {
		crossAxis = Row
		crossRoots = rowRoots
	}

	for i := uint(0); i < eds.width; i++ {
		candidate := make([][]byte, eds.width)
		if axis == Row {
			if eds.squareRow[idx][i] != nil {
				continue
			}
			copy(candidate, eds.squareCol[i])
		} else {
			if eds.squareCol[idx][i] != nil {
				continue
			}
			copy(candidate, eds.squareRow[i])
		}
		candidate[idx] = decoded[i]
		if !isComplete(candidate) {
			continue
		}

		root, err := eds.computeSharesRoot(candidate, crossAxis, i)
		if err != nil || !bytes.Equal(root, crossRoots[i]) {
			log.Warnw("completed crossing axis does not match trusted root", "axis", crossAxis, "index", i)
			return &ErrByzantineData{Axis: crossAxis, Index: i, Shares: candidate}
		}
	}
	return nil
}

// computeSharesRoot commits to a candidate share vector with a fresh tree,
// without touching the square's root caches.
func (eds *ExtendedDataSquare) computeSharesRoot(shares [][]byte, axis Axis, idx uint) ([]byte, error) {
	tree := eds.createTreeFn(axis, idx)
	for _, share := range shares {
		if err := tree.Push(share); err != nil {
			return nil, err
		}
	}
	return tree.Root()
}

func allSolved(axes []bool) bool {
	for _, solved := range axes {
		if !solved {
			return false
		}
	}
	return true
}
