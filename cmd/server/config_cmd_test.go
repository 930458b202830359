package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"content-studio/backend/internal/config"
)

func TestRedactedYAML(t *testing.T) {
	cfg := &config.Config{}
	cfg.Langflow.BaseURL = config.DefaultBaseURL
	cfg.Langflow.ApplicationToken = "AstraCS:supersecretvalue"
	cfg.Server.Port = 8080

	out, err := redactedYAML(cfg)
	require.NoError(t, err)

	assert.NotContains(t, out, "supersecret")
	assert.Equal(t, "AstraCS:supersecretvalue", cfg.Langflow.ApplicationToken, "input must not be modified")

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, config.DefaultBaseURL, decoded.Langflow.BaseURL)
	assert.Equal(t, 8080, decoded.Server.Port)
}

func TestConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LANGFLOW_APPLICATION_TOKEN", "AstraCS:supersecretvalue")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "base_url: "+config.DefaultBaseURL)
	assert.NotContains(t, out.String(), "supersecret")
}
