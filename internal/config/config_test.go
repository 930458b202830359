package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LANGFLOW_APPLICATION_TOKEN", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.EqualValues(t, 1<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, time.Duration(0), cfg.Langflow.Timeout)
	assert.Equal(t, DefaultBaseURL, cfg.Langflow.BaseURL)
	assert.Equal(t, "http://localhost:8080", cfg.Client.ProxyURL)
	assert.Equal(t, "content-studio", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.ConfigFile)
	assert.ErrorIs(t, cfg.ValidateServer(), ErrMissingToken)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LANGFLOW_APPLICATION_TOKEN", "secret-token")
	t.Setenv("LANGFLOW_BASE_URL", "https://langflow.example.com/ ")
	t.Setenv("LANGFLOW_TIMEOUT", "90s")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("FLOW_ID", "flow-1")
	t.Setenv("LANGFLOW_ID", "ns-1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Langflow.ApplicationToken)
	assert.Equal(t, "https://langflow.example.com", cfg.Langflow.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Langflow.Timeout)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.EqualValues(t, 2048, cfg.Server.MaxBodyBytes)
	assert.NoError(t, cfg.ValidateServer())
	assert.NoError(t, cfg.ValidateClient())
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte("server:\n  port: 7000\nlangflow:\n  flow_id: from-file\ntls:\n  enable: true\n  hostnames: [localhost, 127.0.0.1]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Langflow.FlowID)
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, cfg.TLS.Hostnames)
	assert.Contains(t, cfg.ConfigFile, "config.yaml")
	assert.Error(t, cfg.ValidateClient())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, "studio.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LANGFLOW_APPLICATION_TOKEN=from-env-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LANGFLOW_APPLICATION_TOKEN") })

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", cfg.Langflow.ApplicationToken)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("does-not-exist.env")
	assert.Error(t, err)
}

func TestValidateServer_TLS(t *testing.T) {
	cfg := &Config{}
	cfg.Langflow.ApplicationToken = "t"
	cfg.Langflow.BaseURL = DefaultBaseURL
	cfg.Server.MaxBodyBytes = 1024
	cfg.TLS.Enable = true

	assert.Error(t, cfg.ValidateServer())

	cfg.TLS.CertFile, cfg.TLS.KeyFile = "cert.pem", "key.pem"
	assert.NoError(t, cfg.ValidateServer())
}
