package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aeroponic_tower/internal/client"
	"aeroponic_tower/internal/dashboard"
	"aeroponic_tower/internal/logger"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringP("url", "u", "http://localhost:3000", "Hub base URL")
	dashboardCmd.Flags().DurationP("interval", "i", dashboard.DefaultInterval, "Polling period")
	dashboardCmd.Flags().String("export-dir", ".", "Directory receiving CSV exports")
	dashboardCmd.Flags().String("log-file", "dashboard.log", "File receiving logs while the UI owns the terminal")
	dashboardCmd.Flags().Bool("headless", false, "Log every poll instead of drawing the UI")

	_ = v.BindPFlag("dashboard.url", dashboardCmd.Flags().Lookup("url"))
	_ = v.BindPFlag("dashboard.interval", dashboardCmd.Flags().Lookup("interval"))
	_ = v.BindPFlag("dashboard.export_dir", dashboardCmd.Flags().Lookup("export-dir"))
	_ = v.BindPFlag("dashboard.log_file", dashboardCmd.Flags().Lookup("log-file"))
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Watch the hub from the terminal",
	Long: `Polls the hub's current reading, shows it with low/normal/high bands and
keeps the last 20 values of each metric. Press e to export them as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")

		ctx, stop := signalContext()
		defer stop()

		if headless {
			log := logger.Configure(cfg.Log.Level, cfg.Log.Format)
			cl := client.New(cfg.Dashboard.URL, cfg.Dashboard.Timeout, log)
			p := dashboard.NewPoller(cl, dashboard.Options{
				Interval: cfg.Dashboard.Interval,
				Log:      log,
				OnUpdate: func(st dashboard.State) {
					if !st.HasLast {
						return
					}
					log.Infow("dashboard_state",
						"connected", st.Connected,
						"failures", st.Failures,
						"temperature", st.Last.Temperature,
						"humidity", st.Last.Humidity,
						"light", st.Last.Light,
						"captured_at", st.Last.CapturedAt,
					)
				},
			})
			p.Run(ctx)
			return nil
		}

		f, err := os.OpenFile(cfg.Dashboard.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log := logger.New(cfg.Log.Level, cfg.Log.Format, f)

		cl := client.New(cfg.Dashboard.URL, cfg.Dashboard.Timeout, log)
		p := dashboard.NewPoller(cl, dashboard.Options{Interval: cfg.Dashboard.Interval, Log: log})
		log.Infow("dashboard_started", "url", cl.BaseURL(), "interval", p.Interval())
		return dashboard.Run(ctx, p, cfg.Dashboard.ExportDir)
	},
}
