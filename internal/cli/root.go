package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/client"
	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
)

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	verbose bool
}

// NewRootCommand builds the portal command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "servicedesk-portal",
		Short:         "Fill in and submit helpdesk tickets from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "portal API base URL (default PORTAL_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PORTAL_API_TOKEN"), "bearer token")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (default PORTAL_API_TIMEOUT_SECONDS)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newFormCommand(opts))
	cmd.AddCommand(newSubmitCommand(opts))
	cmd.AddCommand(newTicketCommand(opts))
	cmd.AddCommand(newApproveCommand(opts))

	return cmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type portal struct {
	api    *client.Client
	cfg    *config.Config
	logger *zap.Logger
}

func (o *globalOptions) connect() (*portal, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.Client.BaseURL = o.baseURL
	}
	if o.timeout > 0 {
		cfg.Client.TimeoutSeconds = max(1, int(o.timeout.Round(time.Second)/time.Second))
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = observability.NewLogger(cfg.Logger); err != nil {
			return nil, err
		}
	}

	api := client.New(cfg.Client, logger)
	if o.token != "" {
		api = api.WithToken(o.token)
	}
	return &portal{api: api, cfg: cfg, logger: logger}, nil
}
