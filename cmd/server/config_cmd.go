package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"content-studio/backend/internal/config"
	"content-studio/backend/internal/logging"
)

func newConfigCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML, with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			out, err := redactedYAML(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

// redactedYAML renders cfg with the application token masked.
func redactedYAML(cfg *config.Config) (string, error) {
	redacted := *cfg
	redacted.Langflow.ApplicationToken = logging.MaskSecret(cfg.Langflow.ApplicationToken)

	out, err := yaml.Marshal(&redacted)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}
