package uid_test

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_V7Ordered(t *testing.T) {
	gen := uid.NewUUID()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = gen.Generate()
	}

	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestSnowflake(t *testing.T) {
	gen, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	a, b := gen.Generate(), gen.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)

	_, err = uid.NewSnowflake(-1)
	assert.Error(t, err)
}
