package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrSkyle/imagetrail/internal/webhook"
	internalconfig "github.com/DrSkyle/imagetrail/pkg/config"
	"github.com/DrSkyle/imagetrail/pkg/gcp"
	"github.com/DrSkyle/imagetrail/pkg/policy"
	"github.com/DrSkyle/imagetrail/pkg/telemetry"
	"github.com/DrSkyle/imagetrail/pkg/version"
)

// ServeCmd runs the CSPM webhook.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CSPM notification webhook",
	Long: `Starts the HTTP endpoint CloudGuard CSPM posts posture notifications to.
Each notification triggers one lineage walk and one label write-back.

Example:
  imagetrail serve --listen :8080
  imagetrail serve --policy 'age_days > 365.0'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, config.OtelEndpoint)
		if err != nil {
			return fmt.Errorf("telemetry init: %w", err)
		}
		defer shutdown(context.Background())

		var gate *policy.Gate
		if config.Policy != "" {
			gate, err = policy.Compile(config.Policy)
			if err != nil {
				return err
			}
		}

		var compute webhook.Compute
		if config.MockMode {
			slog.Warn("mock mode: serving the built-in demo lineage graph")
			compute = gcp.NewDemoMock()
		} else {
			client, err := gcp.NewClient(ctx)
			if err != nil {
				return err
			}
			compute = client
		}

		srv := webhook.NewServer(webhook.Config{
			Addr:    config.Listen,
			Compute: compute,
			Gate:    gate,
			Logger:  slog.Default(),
			MaxHops: config.MaxHops,
		})
		return srv.Serve(ctx)
	},
}

func init() {
	ServeCmd.Flags().StringVar(&config.Listen, "listen", internalconfig.DefaultListen, "Bind address")
	ServeCmd.Flags().StringVar(&config.Policy, "policy", "", "CEL expression gating label write-backs")
	viper.BindPFlag("listen", ServeCmd.Flags().Lookup("listen"))
	viper.BindPFlag("policy", ServeCmd.Flags().Lookup("policy"))
}
