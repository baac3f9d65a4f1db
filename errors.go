package square2d

import (
	"errors"
	"fmt"
)

// ErrUnevenChunks is returned when non-empty shares are not all of equal size.
var ErrUnevenChunks = errors.New("non-empty shares not all of equal size")

// ErrInvalidChunkSize is returned when the share count is not a perfect
// square, an index is out of range, a root list has the wrong length, or the
// codec rejects the share size. Callers wrap it with context.
var ErrInvalidChunkSize = errors.New("invalid chunk size")

// ErrTooManyChunks is returned when a square exceeds the capacity of its
// codec. It is a pre-flight check that avoids expensive work on squares that
// could never be encoded.
var ErrTooManyChunks = errors.New("number of chunks exceeds the maximum")

// ErrFillerChunkSizeMismatch is returned when a padding share used to extend
// a square does not match the square's share size.
var ErrFillerChunkSizeMismatch = errors.New("filler chunk size does not match data square chunk size")

// ErrUnrepairableDataSquare is returned when the repair loop stalls with
// cells still unset and no byzantine evidence.
var ErrUnrepairableDataSquare = errors.New("failed to solve data square")

// ErrIncompleteAxis is returned when a root is requested over a row or
// column that still has unset shares. Roots are never computed over
// incomplete data.
type ErrIncompleteAxis struct {
	// Axis describes whether the incomplete axis is a row or a column.
	Axis Axis
}

func (e *ErrIncompleteAxis) Error() string {
	return fmt.Sprintf("cannot compute root of incomplete %s", e.Axis)
}

// ErrByzantineData is returned when a decoded row or column does not
// reproduce its trusted Merkle root. It carries the reconstructed shares as
// evidence of the tampering.
type ErrByzantineData struct {
	// Axis describes if this ErrByzantineData is for a row or column.
	Axis Axis
	// Index is the row or column index.
	Index uint
	// Shares contains the full decoded share vector of the offending axis.
	Shares [][]byte
}

func (e *ErrByzantineData) Error() string {
	return fmt.Sprintf("byzantine %s: %d", e.Axis, e.Index)
}
