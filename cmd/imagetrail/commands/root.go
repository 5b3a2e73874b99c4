package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	internalconfig "github.com/DrSkyle/imagetrail/pkg/config"
	"github.com/DrSkyle/imagetrail/pkg/version"
)

var (
	cfgFile string
	config  = internalconfig.Default()
)

var rootCmd = &cobra.Command{
	Use:   "imagetrail",
	Short: "True origin tagging for GCP compute resources",
	Long: `imagetrail - GCP Image Lineage Labeler

A disk built from a ten-year-old image reports its own creation date, not
the image's. imagetrail walks sourceImage / sourceSnapshot / sourceDisk
references back to the earliest readable ancestor and records its identity
as labels on the originating disk.`,
	Version: version.Current,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.imagetrail.yaml)")
	rootCmd.PersistentFlags().BoolVar(&config.JSONLogs, "json-logs", false, "Emit JSON logs")
	rootCmd.PersistentFlags().StringVar(&config.OtelEndpoint, "otel-endpoint", "", "OTLP trace endpoint")
	rootCmd.PersistentFlags().IntVar(&config.MaxHops, "max-hops", internalconfig.DefaultMaxHops, "Lineage walk safety limit")

	// Hidden Flags
	rootCmd.PersistentFlags().BoolVar(&config.MockMode, "mock", false, "Serve the built-in demo lineage graph")
	rootCmd.PersistentFlags().MarkHidden("mock")

	rootCmd.AddCommand(ServeCmd)
	rootCmd.AddCommand(ResolveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".imagetrail.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("IMAGETRAIL")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	if viper.IsSet("listen") {
		config.Listen = viper.GetString("listen")
	}
	if viper.IsSet("max_hops") {
		config.MaxHops = viper.GetInt("max_hops")
	}
	if viper.IsSet("policy") {
		config.Policy = viper.GetString("policy")
	}
	if viper.IsSet("otel_endpoint") {
		config.OtelEndpoint = viper.GetString("otel_endpoint")
	}
}

func initLogging() {
	var handler slog.Handler
	if config.JSONLogs {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}
