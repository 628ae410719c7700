// Package otpcode generates fixed-width numeric one-time codes from
// crypto/rand. It never falls back to a seedable source.
package otpcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

var ErrInvalidLength = errors.New("otpcode: length must be between 1 and 18")

// Generator produces a new code on every call. Implementations are safe for
// concurrent use.
type Generator interface {
	Generate() (string, error)
}

// Numeric draws uniformly from [10^(n-1), 10^n - 1], so the first digit is
// never zero and the code always has exactly n digits.
type Numeric struct {
	low    *big.Int
	span   *big.Int
	source io.Reader
}

func NewNumeric(length int) (*Numeric, error) {
	return newNumeric(length, rand.Reader)
}

func newNumeric(length int, source io.Reader) (*Numeric, error) {
	if length < 1 || length > 18 {
		return nil, ErrInvalidLength
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	high := new(big.Int).Mul(low, big.NewInt(10))
	if length == 1 {
		low = big.NewInt(0)
	}

	return &Numeric{
		low:    low,
		span:   new(big.Int).Sub(high, low),
		source: source,
	}, nil
}

func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.source, n.span)
	if err != nil {
		return "", fmt.Errorf("otpcode: read random source: %w", err)
	}
	return strconv.FormatInt(v.Add(v, n.low).Int64(), 10), nil
}
