package otpcode

import "io"

func NewNumericWithSource(length int, source io.Reader) (*Numeric, error) {
	return newNumeric(length, source)
}
