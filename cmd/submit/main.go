package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"content-studio/backend/internal/client"
	"content-studio/backend/internal/config"
	"content-studio/backend/internal/form"
	"content-studio/backend/pkg/models"
)

// errSubmissionFailed makes the process exit non-zero after the error was shown.
var errSubmissionFailed = errors.New("submission failed")

func main() {
	if err := newSubmitCmd().Execute(); err != nil {
		if !errors.Is(err, errSubmissionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newSubmitCmd() *cobra.Command {
	var (
		envFile     string
		displayType string
		proxyURL    string
	)

	cmd := &cobra.Command{
		Use:   "submit [text]",
		Short: "Generate content through the content studio proxy",
		Long: "Submits either free text or a display type (Reel, Carousel, Static) to the\n" +
			"configured flow and prints the generated response.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(envFile)
			if err != nil {
				return err
			}
			if proxyURL != "" {
				cfg.Client.ProxyURL = strings.TrimRight(proxyURL, "/")
			}
			if err := cfg.ValidateClient(); err != nil {
				return err
			}

			f := form.New(client.New(cfg.Client.ProxyURL, nil), cfg.Langflow.FlowID, cfg.Langflow.LangflowID)

			var text *string
			if len(args) == 1 {
				text = &args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), f, text, models.DisplayType(displayType))
		},
	}

	cmd.Flags().StringVar(&envFile, "env", "", "Path to .env file")
	cmd.Flags().StringVarP(&displayType, "display-type", "t", string(models.DefaultDisplayType),
		"Display type to generate when no text is given (Reel, Carousel, Static)")
	cmd.Flags().StringVar(&proxyURL, "proxy-url", "", "Proxy base URL (overrides PROXY_URL)")

	return cmd
}

// run submits once, showing the loading state until the outcome is rendered.
func run(ctx context.Context, out io.Writer, f *form.Form, text *string, dt models.DisplayType) error {
	if text == nil {
		if _, err := models.ParseDisplayType(string(dt)); err != nil {
			return err
		}
	}

	if err := form.Render(out, form.State{Loading: true}, time.Local); err != nil {
		return err
	}

	var err error
	if text != nil {
		_, err = f.Submit(ctx, *text)
	} else {
		_, err = f.SubmitDisplayType(ctx, dt)
	}
	if err != nil {
		return err
	}

	state := f.State()
	if err := form.Render(out, state, time.Local); err != nil {
		return err
	}
	if state.Error != "" {
		return errSubmissionFailed
	}
	return nil
}
