package square2d

import "fmt"

// Axis identifies which of the two independent codings and commitments a
// position in the square participates in. Cell (r, c) belongs to row r and
// column c.
type Axis int

const (
	Row Axis = iota
	Col
)

func (a Axis) String() string {
	switch a {
	case Row:
		return "row"
	case Col:
		return "col"
	default:
		panic(fmt.Sprintf("invalid axis type: %d", a))
	}
}
