package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"vitibrasil-backend/lib/util/serviceutil"
	"vitibrasil-backend/services/vitidata"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var fetchYear *int
var fetchSub *string
var fetchProduct *string

func init() {
	fetchYear = fetchCmd.Flags().Int("year", 0, "The year to fetch, defaults to the current year.")
	fetchSub = fetchCmd.Flags().String("sub", "", "A sub-option button label or value to restrict to.")
	fetchProduct = fetchCmd.Flags().String("product", "", "A fuzzy product or country filter.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <category> [--year <year>] [--sub <sub-option>] [--product <name>]",
	Short: "Fetches one category of statistics, falling back to snapshots when the site is down.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		category, err := vitidata.ParseCategory(args[0])
		if err != nil {
			serviceutil.Fatal("bad category", err)
		}

		config, err := vitidata.LoadConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		svc, err := vitidata.NewServiceFromConfig(config)
		if err != nil {
			serviceutil.Fatal("failed to initialize service", err)
		}

		t1 := time.Now()
		dataset, err := svc.Fetch(cmd.Context(), vitidata.FetchRequest{
			Category: category,
			Year:     *fetchYear,
			Filters: vitidata.Filters{
				SubOption: *fetchSub,
				Product:   *fetchProduct,
			},
		})
		if err != nil {
			serviceutil.Fatal("fetch failed", err)
		}
		slog.Info("fetch time", "seconds", time.Since(t1).Seconds())

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Label", "Sub-option", "Classification", "Quantity", "Unit", "Value (US$)"})
		for _, r := range dataset.Records {
			t.AppendRow(table.Row{r.Label, r.SubOption, r.Classification, r.Quantity, r.Unit, r.ValueUsd})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		attempts := make([]string, len(dataset.Attempts))
		for i, a := range dataset.Attempts {
			attempts[i] = fmt.Sprintf("%s: %s", a.Method, a.Outcome)
		}
		fmt.Printf(
			"%s %d via %s (%s)\n",
			dataset.Category, dataset.Year, dataset.Source,
			strings.Join(attempts, "; "),
		)
	},
}
