package blindbox

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type cryptoSource struct {
	r io.Reader
}

func (s cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic("blindbox: random source unavailable: " + err.Error())
	}

	// top 53 bits, the float64 mantissa width
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultSource is backed by crypto/rand and is safe for concurrent use.
func DefaultSource() RandomSource { return cryptoSource{r: cryptorand.Reader} }

// NewSeededSource returns a reproducible PCG source. Not safe for concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
