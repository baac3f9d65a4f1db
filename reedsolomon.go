package square2d

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/reedsolomon"
)

// encoderCacheSize bounds the number of reedsolomon.Encoder instances kept
// per codec. Encoders are keyed by data shard count, so one entry serves
// every axis of a square of that width.
const encoderCacheSize = 16

func init() {
	registerCodec(Leopard, NewLeoRSCodec())
	registerCodec(RSGF8, NewRSGF8Codec())
}

var (
	_ Codec = &LeoRSCodec{}
	_ Codec = &RSGF8Codec{}
)

// rsCodec implements Encode and Decode on top of klauspost/reedsolomon,
// parameterized by the options that select the underlying arithmetic.
type rsCodec struct {
	opts []reedsolomon.Option

	// encCache caches encoder instances by data shard count.
	encCache *lru.Cache[int, reedsolomon.Encoder]
}

func newRSCodec(opts ...reedsolomon.Option) rsCodec {
	cache, err := lru.New[int, reedsolomon.Encoder](encoderCacheSize)
	if err != nil {
		panic(fmt.Sprintf("creating encoder cache: %v", err))
	}
	return rsCodec{
		opts:     opts,
		encCache: cache,
	}
}

func (c *rsCodec) loadOrInitEncoder(dataShards int) (reedsolomon.Encoder, error) {
	if enc, ok := c.encCache.Get(dataShards); ok {
		return enc, nil
	}
	enc, err := reedsolomon.New(dataShards, dataShards, c.opts...)
	if err != nil {
		return nil, err
	}
	c.encCache.Add(dataShards, enc)
	return enc, nil
}

// Encode returns the k parity shares for the given k data shares. All data
// shares must be present and of equal size.
func (c *rsCodec) Encode(data [][]byte) ([][]byte, error) {
	dataLen := len(data)
	enc, err := c.loadOrInitEncoder(dataLen)
	if err != nil {
		return nil, err
	}

	shards := make([][]byte, dataLen*2)
	copy(shards, data)
	for i := dataLen; i < len(shards); i++ {
		shards[i] = make([]byte, len(data[0]))
	}

	if err := enc.Encode(shards); err != nil {
		return nil, err
	}
	return shards[dataLen:], nil
}

// Decode fills the missing shares of a sparse vector of 2k original + parity
// shares. Missing shares must be nil or empty. At least k shares must be
// present.
func (c *rsCodec) Decode(data [][]byte) ([][]byte, error) {
	half := len(data) / 2
	enc, err := c.loadOrInitEncoder(half)
	if err != nil {
		return nil, err
	}

	shards := make([][]byte, len(data))
	for i, share := range data {
		if len(share) != 0 {
			shards[i] = share
		}
	}

	if err := enc.Reconstruct(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// LeoRSCodec is the Leopard-RS codec. Its O(n log n) encoding supports very
// large squares but constrains share sizes to multiples of 64 bytes.
type LeoRSCodec struct {
	rsCodec
}

func NewLeoRSCodec() *LeoRSCodec {
	return &LeoRSCodec{
		rsCodec: newRSCodec(reedsolomon.WithLeopardGF(true)),
	}
}

func (c *LeoRSCodec) MaxChunks() int {
	return 32768 * 32768
}

func (c *LeoRSCodec) Name() string {
	return Leopard
}

func (c *LeoRSCodec) ValidateChunkSize(chunkSize int) error {
	if chunkSize <= 0 || chunkSize%64 != 0 {
		return fmt.Errorf("%w: %s codec requires a positive multiple of 64 bytes, got %d",
			ErrInvalidChunkSize, Leopard, chunkSize)
	}
	return nil
}

// RSGF8Codec is a Vandermonde Reed-Solomon codec over GF(2^8). The field
// limits an axis to 256 total shares, so the original square width may not
// exceed 128.
type RSGF8Codec struct {
	rsCodec
}

func NewRSGF8Codec() *RSGF8Codec {
	return &RSGF8Codec{
		rsCodec: newRSCodec(),
	}
}

func (c *RSGF8Codec) MaxChunks() int {
	return 128 * 128
}

func (c *RSGF8Codec) Name() string {
	return RSGF8
}

func (c *RSGF8Codec) ValidateChunkSize(chunkSize int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: %s codec requires a positive share size, got %d",
			ErrInvalidChunkSize, RSGF8, chunkSize)
	}
	return nil
}
