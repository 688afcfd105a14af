package main

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	solari "github.com/skypies/solari1090"
)

var (
	onceMode string
	onceRows int
	onceText bool
)

func init() {
	onceCmd.Flags().StringVarP(&onceMode, "mode", "m", "departures", "arrivals or departures")
	onceCmd.Flags().IntVar(&onceRows, "rows", 0, "rows to show (0 means the configured max_rows)")
	onceCmd.Flags().BoolVar(&onceText, "text", false, "print rows as text, not JSON")
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single cycle and print the result",
	Long: `Run a single board cycle against the feed, update the stored state, and print the
result envelope. Exits non-zero if the feed could not be read.

Examples:
  solari once --mode arrivals
  solari once --text --rows 3`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	env, runErr := a.engine.RunWithRows(cmd.Context(), solari.ParseMode(onceMode), onceRows)

	if onceText && env.OK {
		cmd.Printf("%s: %s (%d arrivals, %d departures)\n", env.Airport, env.Mode,
			env.Counts.ArrivalsInRadius, env.Counts.DeparturesInRadius)
		for _, r := range env.Rows {
			cmd.Println(r)
		}
	} else {
		js, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(js))
	}

	return runErr
}
