package credential

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// MinKeyLength is the shortest key accepted from a generator. Each nanoid
// symbol carries 6 bits, so 22 symbols give 132 bits of randomness.
const MinKeyLength = 22

// Generator produces a new random key.
type Generator func() string

// NewGenerator returns a crypto/rand backed nanoid generator of the given length.
func NewGenerator(length int) (Generator, error) {
	if length < MinKeyLength {
		return nil, fmt.Errorf("%w: key length %d is below %d", ErrGeneration, length, MinKeyLength)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return gen, nil
}
