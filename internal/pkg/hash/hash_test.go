package hash_test

import (
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.IsType(t, hash.Plain{}, hash.New(""))
	assert.IsType(t, &hash.HMACSHA256{}, hash.New("s3cret"))
}

func TestPlain(t *testing.T) {
	h := hash.NewPlain()

	got, err := h.Hash("12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", string(got))
}

func TestHMACSHA256_Deterministic(t *testing.T) {
	h := hash.NewHMACSHA256("s3cret")

	a, err := h.Hash("12345")
	require.NoError(t, err)
	b, err := h.Hash("12345")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := h.Hash("12346")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	other, err := hash.NewHMACSHA256("other").Hash("12345")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}
