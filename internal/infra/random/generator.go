// Package random provides cryptographically secure random string generation.
package random

import (
	"crypto/rand"
	"math/big"

	"ziplink/internal/domain/service"
)

type generator struct{}

// NewGenerator returns a CodeGenerator backed by crypto/rand. The generator
// is stateless and safe for concurrent use.
func NewGenerator() service.CodeGenerator {
	return &generator{}
}

// Generate returns a string of exactly length characters, each drawn
// independently and uniformly from alphabet. Inputs are clamped rather than
// rejected: an empty alphabet falls back to digits, length to 1.
func (g *generator) Generate(alphabet string, length int) string {
	if alphabet == "" {
		alphabet = "0123456789"
	}
	if length < 1 {
		length = 1
	}

	chars := []rune(alphabet)
	max := big.NewInt(int64(len(chars)))

	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to the first character so callers still get a
			// fixed-length string and the store's uniqueness check decides.
			out[i] = chars[0]

			continue
		}
		out[i] = chars[n.Int64()]
	}

	return string(out)
}
