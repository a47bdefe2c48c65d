package main

import (
	"context"
	"fmt"

	"github.com/koscakluka/tripper/internal/app"
	"github.com/koscakluka/tripper/internal/config"
	"github.com/spf13/cobra"
)

const tripperLongDesc string = `Tripper is a travel planning assistant.

  tripper chat         Chat with the travel guide
  tripper plan         Generate an itinerary and a map of its places
  tripper transcribe   Turn a recording into text
  tripper serve        Run the HTTP API`

const tripperShortDesc string = "Tripper - travel planning assistant"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	debug      bool
	configFile string
}

func newTripperCmd() *cobra.Command {
	flags := &rootFlags{}
	var shutdownLogging func(context.Context) error

	cmd := &cobra.Command{
		Use:           "tripper",
		Short:         tripperShortDesc,
		Long:          tripperLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			shutdownLogging = setupLogging(cmd.ErrOrStderr(), flags.debug)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if shutdownLogging == nil {
				return nil
			}
			return shutdownLogging(cmd.Context())
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to a tripper.toml config file")

	cmd.AddCommand(
		newChatCmd(flags),
		newPlanCmd(flags),
		newTranscribeCmd(flags),
		newServeCmd(flags),
	)
	return cmd
}

// loadApp reads the configuration and builds the services.
func loadApp(ctx context.Context, flags *rootFlags) (*app.App, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("starting tripper: %w", err)
	}
	return a, nil
}
