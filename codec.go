package square2d

import "fmt"

const (
	// Leopard is the codec backed by the Leopard-RS port in
	// github.com/klauspost/reedsolomon. It requires share sizes that are a
	// multiple of 64 bytes.
	Leopard = "Leopard"

	// RSGF8 is a classic Vandermonde Reed-Solomon codec over GF(2^8), also
	// backed by github.com/klauspost/reedsolomon. It supports arbitrary
	// share sizes but is limited to squares of original width 128.
	RSGF8 = "RSGF8"
)

// Codec is the erasure engine contract. A codec operates on one axis at a
// time, conceptually split as k data shares followed by k parity shares.
// Implementations must be deterministic and pure.
type Codec interface {
	// Encode encodes original data, automatically extracting share size.
	// There must be no missing shares. Only returns parity shares.
	Encode(data [][]byte) ([][]byte, error)
	// Decode decodes sparse original + parity data, automatically extracting
	// share size. Missing shares must be nil. Returns original + parity data.
	Decode(data [][]byte) ([][]byte, error)
	// MaxChunks returns the max number of chunks this codec supports in a 2D
	// original data square. Chunk is a synonym of share.
	MaxChunks() int
	// Name returns the name of the codec.
	Name() string
	// ValidateChunkSize returns an error if this codec does not support
	// chunkSize. Returns nil if chunkSize is supported. Chunk is a synonym of
	// share.
	ValidateChunkSize(chunkSize int) error
}

// codecs is a global map used for keeping track of registered codecs for
// testing and JSON unmarshalling
var codecs = make(map[string]Codec)

func registerCodec(ct string, codec Codec) {
	if codecs[ct] != nil {
		panic(fmt.Sprintf("%v already registered", codec))
	}
	codecs[ct] = codec
}
