package xid

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minNumber  = 10000000
	numberSpan = 90000000
)

// New returns prefix followed by eight random digits, e.g. "INV-48213907".
func New(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(numberSpan))
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d", prefix, minNumber+n.Int64()), nil
}
