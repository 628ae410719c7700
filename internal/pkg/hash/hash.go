package hash

// Hash produces the stored form of a code.
type Hash interface {
	Hash(str string) ([]byte, error)
}

// Plain stores the value verbatim. It is the default when no code secret is configured.
type Plain struct{}

func NewPlain() Plain { return Plain{} }

func (Plain) Hash(str string) ([]byte, error) { return []byte(str), nil }

// New picks HMACSHA256 when secret is set and Plain otherwise.
func New(secret string) Hash {
	if secret == "" {
		return NewPlain()
	}
	return NewHMACSHA256(secret)
}
