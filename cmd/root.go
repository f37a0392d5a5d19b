package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aeroponic_tower/internal/config"
)

// v holds the settings of every command: defaults, configs/config.yml,
// TOWER_* environment variables and bound flags.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "tower",
	Short: "Sensor hub for an aeroponic growing tower",
	Long: `Collects temperature, humidity and light readings from the tower's
sensor board, keeps the latest one plus a short history in memory and serves
them to the web and terminal dashboards.`,
	SilenceUsage: true,
}

func init() {
	config.Setup(v)

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default configs/config.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log encoding: console or json")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// Execute is the main entry point for our cobra commands
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, or the default lookup.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
