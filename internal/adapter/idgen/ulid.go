package idgen

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues entry and transfer ids. Ids from one generator are
// strictly increasing, so history pages stay stable when timestamps tie.
type ULIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator returns a generator over crypto/rand and the wall clock.
func NewULIDGenerator() *ULIDGenerator {
	return NewULIDGeneratorFrom(rand.Reader, time.Now)
}

// NewULIDGeneratorFrom draws randomness from entropy and timestamps from now.
func NewULIDGeneratorFrom(entropy io.Reader, now func() time.Time) *ULIDGenerator {
	return &ULIDGenerator{
		now:     now,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Generate returns the next id. It panics if the entropy source fails or a
// single millisecond overflows the monotonic counter.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
