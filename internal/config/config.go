package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when the Langflow application token is not configured.
var ErrMissingToken = errors.New("langflow application token is not configured (set LANGFLOW_APPLICATION_TOKEN)")

// DefaultBaseURL is the hosted Langflow API.
const DefaultBaseURL = "https://api.langflow.astra.datastax.com"

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Port         int           `mapstructure:"port" yaml:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
		MaxBodyBytes int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	} `mapstructure:"server" yaml:"server"`
	Langflow struct {
		BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`
		ApplicationToken string        `mapstructure:"application_token" yaml:"application_token"`
		Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
		FlowID           string        `mapstructure:"flow_id" yaml:"flow_id"`
		LangflowID       string        `mapstructure:"langflow_id" yaml:"langflow_id"`
	} `mapstructure:"langflow" yaml:"langflow"`
	Client struct {
		ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url"`
	} `mapstructure:"client" yaml:"client"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	TLS struct {
		Enable    bool     `mapstructure:"enable" yaml:"enable"`
		CertFile  string   `mapstructure:"cert_file" yaml:"cert_file"`
		KeyFile   string   `mapstructure:"key_file" yaml:"key_file"`
		Hostnames []string `mapstructure:"hostnames" yaml:"hostnames"`
	} `mapstructure:"tls" yaml:"tls"`
	Telemetry struct {
		ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	} `mapstructure:"telemetry" yaml:"telemetry"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.max_body_bytes":      "MAX_BODY_BYTES",
	"langflow.base_url":          "LANGFLOW_BASE_URL",
	"langflow.application_token": "LANGFLOW_APPLICATION_TOKEN",
	"langflow.timeout":           "LANGFLOW_TIMEOUT",
	"langflow.flow_id":           "FLOW_ID",
	"langflow.langflow_id":       "LANGFLOW_ID",
	"client.proxy_url":           "PROXY_URL",
	"log.level":                  "LOG_LEVEL",
}

// LoadConfig loads the configuration from an optional config.yaml and the
// environment. When envFile is set it is loaded into the environment first;
// otherwise a .env in the working directory is used if present.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.ConfigFile = v.ConfigFileUsed()

	config.Langflow.BaseURL = normalizeBaseURL(config.Langflow.BaseURL)
	config.Client.ProxyURL = normalizeBaseURL(config.Client.ProxyURL)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	// Runs can take minutes; the response write is not bounded by default.
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("langflow.base_url", DefaultBaseURL)
	v.SetDefault("langflow.application_token", "")
	v.SetDefault("langflow.timeout", 0)
	v.SetDefault("langflow.flow_id", "")
	v.SetDefault("langflow.langflow_id", "")
	v.SetDefault("client.proxy_url", "http://localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("tls.enable", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.hostnames", []string{})
	v.SetDefault("telemetry.service_name", "content-studio")
}

// ValidateServer checks the settings the proxy needs to start.
func (c *Config) ValidateServer() error {
	if c.Langflow.ApplicationToken == "" {
		return ErrMissingToken
	}
	if c.Langflow.BaseURL == "" {
		return errors.New("langflow base url is not configured (set LANGFLOW_BASE_URL)")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	if c.TLS.Enable && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls is enabled but cert_file or key_file is not set")
	}
	return nil
}

// ValidateClient checks the settings the submit client needs.
func (c *Config) ValidateClient() error {
	if c.Langflow.FlowID == "" || c.Langflow.LangflowID == "" {
		return errors.New("flow identifiers are not configured (set FLOW_ID and LANGFLOW_ID)")
	}
	if c.Client.ProxyURL == "" {
		return errors.New("proxy url is not configured (set PROXY_URL)")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// normalizeBaseURL trims whitespace and any trailing slash so paths can be
// appended directly.
func normalizeBaseURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
