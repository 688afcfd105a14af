// solari runs the live arrivals/departures board against a dump1090 receiver.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "solari",
	Short: "Live airport arrivals and departures board, from ADS-B",
	Long: `solari polls a dump1090 / readsb receiver for the aircraft it can hear, tracks
their altitude over time, and works out which ones are arriving at or departing
from the configured airport.

Settings come from a YAML file (--config), overridden by SOLARI_* environment
variables; see the config package for the full list.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(onceCmd)
}
