package main

import (
	"time"

	"github.com/spf13/cobra"

	"aeroponic_tower/internal/client"
	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/service"
)

const clientTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("url", "u", "http://localhost:3000", "Hub base URL")
	simulateCmd.Flags().DurationP("interval", "i", service.DefaultSimTick, "Period between readings")

	_ = v.BindPFlag("simulator.url", simulateCmd.Flags().Lookup("url"))
	_ = v.BindPFlag("simulator.interval", simulateCmd.Flags().Lookup("interval"))
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Post simulated readings to a running hub",
	Long: `Acts as the tower's sensor board: every interval it posts a random
reading (20-25 °C, 50-60 %, 400-900 lux) to the hub's /update endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger.Configure(cfg.Log.Level, cfg.Log.Format)

		ctx, stop := signalContext()
		defer stop()

		cl := client.New(cfg.Simulator.URL, clientTimeout, log)
		log.Infow("simulator_started", "url", cl.BaseURL(), "interval", cfg.Simulator.Interval)
		service.NewSimulatorService(cl, log).Run(ctx, cfg.Simulator.Interval)
		log.Infow("simulator_stopped")
		return nil
	},
}
