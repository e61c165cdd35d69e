package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse([]string{"--auth-token=secret"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Query.Address)
	assert.Equal(t, 7777, cfg.Query.Port)
	assert.Equal(t, 2*time.Second, cfg.Query.Timeout)
	assert.Equal(t, "windows-1251", cfg.Query.Encoding)
	assert.Equal(t, OpcodeAll, cfg.Query.Opcode)
	assert.False(t, cfg.Query.Resolve)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestParse_QueryNamespace(t *testing.T) {
	cfg, err := parse([]string{
		"--probe",
		"--query-address=samp.example.com",
		"--query-port=7778",
		"--query-opcode=r",
		"--query-timeout=500ms",
		"--query-resolve",
		"--query-encoding=raw",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Probe)
	assert.Equal(t, "samp.example.com", cfg.Query.Address)
	assert.Equal(t, 7778, cfg.Query.Port)
	assert.Equal(t, "r", cfg.Query.Opcode)
	assert.Equal(t, 500*time.Millisecond, cfg.Query.Timeout)
	assert.True(t, cfg.Query.Resolve)
}

func TestParse_Env(t *testing.T) {
	t.Setenv("SAMPQ_QUERY_PORT", "8888")
	t.Setenv("SAMPQ_AUTH_TOKEN", "env-secret")

	cfg, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 8888, cfg.Query.Port)
	assert.Equal(t, "env-secret", cfg.Server.AuthToken)
}

func TestParse_Invalid(t *testing.T) {
	_, err := parse([]string{"--query-opcode=x"})
	require.Error(t, err)

	_, err = parse([]string{"--query-encoding=no-such-codepage"})
	require.Error(t, err)

	_, err = parse([]string{"--query-port=70000"})
	require.Error(t, err)
}

func TestStorage_Maintenance(t *testing.T) {
	assert.False(t, Storage{}.Maintenance())
	assert.True(t, Storage{CheckAll: true}.Maintenance())
	assert.True(t, Storage{GenerateCount: 5}.Maintenance())
}
