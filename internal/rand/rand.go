// Package rand generates short random names for scratch objects.
package rand

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// charset only holds characters that are valid in CMIS names and URL paths.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var defaultSource = newSource()

type source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSource() *source {
	seed := make([]byte, 16)
	if _, err := cryptorand.Read(seed); err != nil {
		panic("rand: no entropy: " + err.Error())
	}
	return &source{
		//nolint:gosec // names, not secrets
		rng: rand.New(rand.NewPCG(
			binary.LittleEndian.Uint64(seed[:8]),
			binary.LittleEndian.Uint64(seed[8:]),
		)),
	}
}

func (s *source) base62(n int) string {
	buf := make([]byte, n)

	s.mu.Lock()
	for i := range buf {
		buf[i] = charset[s.rng.IntN(len(charset))]
	}
	s.mu.Unlock()

	return string(buf)
}

// Name returns prefix followed by n random alphanumeric characters.
func Name(prefix string, n int) string {
	return prefix + defaultSource.base62(n)
}
