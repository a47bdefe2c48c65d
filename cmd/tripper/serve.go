package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/koscakluka/tripper/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.Config.Server.Listen
			}

			opts := []server.Option{
				server.WithSessionTTL(a.Config.Server.SessionTTL),
				server.WithMapOptions(a.MapOptions...),
			}
			if a.Transcriber != nil {
				opts = append(opts, server.WithTranscriber(a.Transcriber))
			}
			if a.AudioDir != "" {
				opts = append(opts, server.WithAudioDir(a.AudioDir))
			}
			return server.New(a.Assistant, a.Planner, opts...).Run(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on, defaults to server.listen from the config")
	return cmd
}
