package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Float64 returns a uniformly distributed float in [0, 1)
	Float64() float64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// float64 mantissa precision
const precision = 1 << 53

// Float64 returns a cryptographically random float in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	result, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return float64(result.Int64()) / precision
}
