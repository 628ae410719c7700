package valueobject_test

import (
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ValueScan(t *testing.T) {
	in := valueobject.JSONMap{"provider_message_id": "m-1", "status_code": 202}

	v, err := in.Value()
	require.NoError(t, err)

	var out valueobject.JSONMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, "m-1", out.GetString("provider_message_id"))
	assert.Equal(t, 202, out.GetInt("status_code"))
	assert.Empty(t, out.GetString("missing"))
}

func TestJSONMap_ScanEdges(t *testing.T) {
	var j valueobject.JSONMap

	require.NoError(t, j.Scan(nil))
	assert.Equal(t, valueobject.JSONMap{}, j)

	require.NoError(t, j.Scan(`{"a":"b"}`))
	assert.Equal(t, "b", j.GetString("a"))

	assert.ErrorIs(t, j.Scan(42), valueobject.ErrScanValueNotBytes)

	var nilMap valueobject.JSONMap
	v, err := nilMap.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}
