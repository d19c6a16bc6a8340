package cli

import (
	"github.com/ka2n/firms/api"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	offlineFlags struct {
		countries []string
		world     bool
		beginYear int
		endYear   int
		browser   bool
		raw       bool
		json      bool
	}

	offlineCmd = &cobra.Command{
		Use:   "offline [country...]",
		Short: "Load detections from the local MODIS archive",
		Long: `Load detections from yearly per-country MODIS files laid out as

  {data-dir}/modis/{year}/modis_{year}_{country}.csv

Countries are display names (China, United States). Missing files count as
no detections. --world loads every catalog country and takes a long time.`,
		Example: `  firms offline --begin-year 2019 --end-year 2021 China Japan
  firms offline --data-dir ./archive --world`,
		RunE: runOffline,
	}
)

func init() {
	f := offlineCmd.Flags()
	f.StringSliceVarP(&offlineFlags.countries, "country", "c", nil, "Country name, repeatable")
	f.BoolVar(&offlineFlags.world, "world", false, "Load every catalog country")
	f.IntVar(&offlineFlags.beginYear, "begin-year", api.DefaultBeginYear, "First year")
	f.IntVar(&offlineFlags.endYear, "end-year", api.DefaultEndYear, "Last year")
	f.String("data-dir", "", "Archive root (default $FIRMS_DATA_DIR or .)")
	f.BoolVarP(&offlineFlags.browser, "browser", "b", false, "Open the detections in the FIRMS fire map")
	f.BoolVar(&offlineFlags.raw, "raw", false, "Include the records and aggregate tables")
	f.BoolVar(&offlineFlags.json, "json", false, "Print a JSON summary")
	rootCmd.AddCommand(offlineCmd)
}

func runOffline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in := api.UserInput{
		Offline:   true,
		World:     offlineFlags.world,
		Countries: append(append([]string(nil), args...), offlineFlags.countries...),
		BeginYear: offlineFlags.beginYear,
		EndYear:   offlineFlags.endYear,
	}
	if offlineFlags.world && len(in.Countries) > 0 {
		return failure.New(InvalidArguments, failure.Message("Countries cannot be combined with --world"))
	}

	sel, err := session.Selection(ctx, in)
	if err != nil {
		return err
	}
	result, err := session.Run(ctx, sel)
	if err != nil {
		return err
	}

	if offlineFlags.browser {
		return openMap(result)
	}
	if offlineFlags.json {
		return printJSON(result.Summary())
	}
	return output(report(result, reportOptions{Host: session.Client.Host(), Raw: offlineFlags.raw}))
}
