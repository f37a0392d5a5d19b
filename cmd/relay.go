package main

import (
	"github.com/spf13/cobra"

	"aeroponic_tower/internal/client"
	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/serial"
)

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().StringP("device", "d", "/dev/ttyACM0", "Serial device of the sensor board")
	relayCmd.Flags().Int("baud", 9600, "Line speed set with stty, 0 to leave the port as is")
	relayCmd.Flags().StringP("url", "u", "http://localhost:3000", "Hub base URL")

	_ = v.BindPFlag("relay.port", relayCmd.Flags().Lookup("device"))
	_ = v.BindPFlag("relay.baud", relayCmd.Flags().Lookup("baud"))
	_ = v.BindPFlag("relay.url", relayCmd.Flags().Lookup("url"))
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward readings from the serial board to the hub",
	Long: `Reads lines such as "temp:22.5,humi:65.3,lumi:520" from the sensor
board's serial port and posts each one to the hub. The port is reopened
after it disappears.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger.Configure(cfg.Log.Level, cfg.Log.Format)

		ctx, stop := signalContext()
		defer stop()

		cl := client.New(cfg.Relay.URL, clientTimeout, log)
		log.Infow("relay_started", "device", cfg.Relay.Port, "baud", cfg.Relay.Baud, "url", cl.BaseURL())
		serial.NewRelay(serial.DeviceOpener(cfg.Relay.Port, cfg.Relay.Baud), cl, log).Run(ctx)
		return nil
	},
}
