package config_test

import (
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  server:
    cors: "http://a.test, http://b.test,"
modules:
  otp:
    ttl_seconds: 300
    enabled: true
  delivery:
    consumer_names:
      - otp_issued_delivery
      - other
labels: "env:dev, team:auth"
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.True(t, cfg.GetBool("modules.otp.enabled"))
	assert.Equal(t, 5*time.Minute, cfg.GetSecond("modules.otp.ttl_seconds"))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"otp_issued_delivery", "other"}, cfg.GetArray("modules.delivery.consumer_names"))
	assert.Equal(t, map[string]string{"env": "dev", "team": "auth"}, cfg.GetMap("labels"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("OTPGATE_MODULES_OTP_TTL_SECONDS", "60")

	cfg, err := config.NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.GetSecond("modules.otp.ttl_seconds"))
}

func TestViperFromBytes_RequiresType(t *testing.T) {
	_, err := config.NewViperFromBytes(" ", nil)
	assert.ErrorIs(t, err, config.ErrConfigTypeRequired)
}
