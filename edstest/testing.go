// Package edstest provides random square fixtures for tests.
package edstest

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/square2d"
)

// RandShares generates total random shares of shareSize bytes each.
func RandShares(t testing.TB, total, shareSize int) [][]byte {
	shares := make([][]byte, total)
	for i := range shares {
		shares[i] = make([]byte, shareSize)
		_, err := rand.Read(shares[i])
		require.NoError(t, err)
	}
	return shares
}

// RandEDS generates an EDS filled with random data for an original square of
// the given width.
func RandEDS(t testing.TB, odsWidth, shareSize int) *square2d.ExtendedDataSquare {
	shares := RandShares(t, odsWidth*odsWidth, shareSize)
	eds, err := square2d.ComputeExtendedDataSquare(shares, square2d.NewRSGF8Codec(), square2d.NewDefaultTree)
	require.NoError(t, err, "failure to compute the extended data square")
	return eds
}
