package commands

import (
	"log/slog"
	"time"

	"vitibrasil-backend/lib/util/serviceutil"
	"vitibrasil-backend/services/vitidata"

	"github.com/spf13/cobra"
)

var seedFrom *int
var seedTo *int

func init() {
	seedFrom = seedCmd.Flags().Int("from", 0, "First year to seed, defaults to the current year.")
	seedTo = seedCmd.Flags().Int("to", 0, "Last year to seed, defaults to the current year.")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed [--from <year>] [--to <year>]",
	Short: "Scrapes every category live for a span of years and stores the snapshots.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := vitidata.LoadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		svc, err := vitidata.NewServiceFromConfig(config)
		if err != nil {
			serviceutil.Fatal("failed to initialize service", err)
		}

		from, to := *seedFrom, *seedTo
		if from == 0 {
			from = time.Now().Year()
		}
		if to == 0 {
			to = time.Now().Year()
		}

		t1 := time.Now()
		err = svc.SeedSnapshots(cmd.Context(), from, to)
		if err != nil {
			// partial seeds are still useful, report and keep the db
			slog.Warn("seeding finished with errors", "err", err)
		}
		slog.Info("seeding time", "seconds", time.Since(t1).Seconds())
	},
}
