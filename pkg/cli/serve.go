package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"scriptura/pkg/channels"
	_ "scriptura/pkg/channels/autoload" // registers channels
	"scriptura/pkg/config"
	"scriptura/pkg/gateway"
	"scriptura/pkg/handler"
	"scriptura/pkg/monitor"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the channels and answer questions until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			monitor.PrintBanner(Version)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := loadApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			qh := handler.NewQuestionHandler(a.router)

			chs := channels.LoadFromConfig(a.cfg.Channels, channels.Deps{
				System:   a.system.Get(),
				Store:    a.store,
				Answerer: a.router,
			})
			if len(chs) == 0 {
				return fmt.Errorf("no channels configured, add one under \"channels\" in %s", configPath)
			}

			gw, err := gateway.NewGatewayBuilder().
				WithMonitor(monitor.NewCLIMonitor()).
				WithChannel(chs...).
				WithHandler(qh).
				Build()
			if err != nil {
				return fmt.Errorf("failed to build gateway: %w", err)
			}

			go config.WatchSystemConfig(ctx, a.system, systemPath, func(c *config.SystemConfig) {
				monitor.SetLevel(c.LogLevel)
				a.pruneTranscripts()
			})

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				slog.Info("Received shutdown signal", "signal", sig.String())
			case <-ctx.Done():
			}

			cancel()
			gw.StopAll()
			qh.Wait()
			slog.Info("Bye!")
			return nil
		},
	}
}
