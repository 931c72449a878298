package idgen

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// TrackingCodeLength is the number of characters in a tracking code.
	TrackingCodeLength = 10

	trackingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TrackingCodeGenerator draws uniformly random codes over [A-Z0-9].
type TrackingCodeGenerator struct {
	source io.Reader
	length int
}

// NewTrackingCodeGenerator creates a generator backed by crypto/rand.
func NewTrackingCodeGenerator() *TrackingCodeGenerator {
	return &TrackingCodeGenerator{source: rand.Reader, length: TrackingCodeLength}
}

// NewTrackingCodeGeneratorFrom creates a generator reading from source.
func NewTrackingCodeGeneratorFrom(source io.Reader, length int) *TrackingCodeGenerator {
	return &TrackingCodeGenerator{source: source, length: length}
}

// Generate returns a new code. Bytes at or above the largest multiple of the
// alphabet size are rejected so every character is equally likely.
func (g *TrackingCodeGenerator) Generate() (string, error) {
	const limit = 256 - 256%len(trackingCodeAlphabet)

	code := make([]byte, 0, g.length)
	buf := make([]byte, g.length)

	for len(code) < g.length {
		if _, err := io.ReadFull(g.source, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, trackingCodeAlphabet[int(b)%len(trackingCodeAlphabet)])
			if len(code) == g.length {
				break
			}
		}
	}

	return string(code), nil
}
