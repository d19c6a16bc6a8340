package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ka2n/firms/api"
	"github.com/morikuni/failure/v2"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	onlineFlags struct {
		countries []string
		world     bool
		source    sourceFlag
		date      dateFlag
		days      int
		mapKey    string
		browser   bool
		raw       bool
		geocode   bool
		json      bool
	}

	onlineCmd = &cobra.Command{
		Use:   "online [country...]",
		Short: "Fetch detections from the FIRMS API",
		Long: `Fetch detections from the FIRMS API, one request per country.

Countries are codes (CHN) or names (China), given as arguments or with
--country. Without countries China and the United States are shown.
The date defaults to the newest date the source has.`,
		Example: `  firms online CHN USA
  firms online -c JPN -s VIIRS_SNPP_NRT -d 2023-08-01 -n 5
  firms online --world --geocode`,
		RunE: runOnline,
	}
)

func init() {
	f := onlineCmd.Flags()
	f.StringSliceVarP(&onlineFlags.countries, "country", "c", nil, "Country code or name, repeatable")
	f.BoolVar(&onlineFlags.world, "world", false, "Request the whole world in one call")
	f.VarP(&onlineFlags.source, "source", "s", "Data source, see 'firms sources' (default MODIS_SP)")
	f.VarP(&onlineFlags.date, "date", "d", "Anchor date YYYY-MM-DD (default newest available)")
	f.IntVarP(&onlineFlags.days, "days", "n", api.DefaultDayRange, "Number of days from the anchor date, 1 to 10")
	f.StringVar(&onlineFlags.mapKey, "map-key", "", "FIRMS MAP_KEY (default $FIRMS_MAP_KEY)")
	f.BoolVarP(&onlineFlags.browser, "browser", "b", false, "Open the detections in the FIRMS fire map")
	f.BoolVar(&onlineFlags.raw, "raw", false, "Include the records and aggregate tables")
	f.BoolVar(&onlineFlags.geocode, "geocode", false, "Derive countries from coordinates when records have none")
	f.BoolVar(&onlineFlags.json, "json", false, "Print a JSON summary")
	rootCmd.AddCommand(onlineCmd)
}

func runOnline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in := api.UserInput{
		World:     onlineFlags.world,
		Countries: append(append([]string(nil), args...), onlineFlags.countries...),
		DayRange:  onlineFlags.days,
		MapKey:    onlineFlags.mapKey,
		Geocode:   onlineFlags.geocode,
	}
	if onlineFlags.world && len(in.Countries) > 0 {
		return failure.New(InvalidArguments, failure.Message("Countries cannot be combined with --world"))
	}
	if onlineFlags.source.IsSet {
		in.Source = onlineFlags.source.Value.String()
	}
	if onlineFlags.date.IsSet {
		in.Date = onlineFlags.date.String()
	}

	sel, err := session.Selection(ctx, in)
	if err != nil {
		return err
	}
	result, err := session.Run(ctx, sel)
	if err != nil {
		return err
	}

	if onlineFlags.browser {
		return openMap(result)
	}
	if onlineFlags.json {
		return printJSON(result.Summary())
	}
	return output(report(result, reportOptions{Host: session.Client.Host(), Raw: onlineFlags.raw}))
}

func openMap(r *api.Result) error {
	u := r.MapURL(session.Client.Host())
	if u == nil {
		return failure.New(NothingToOpen, failure.Message("No map to open"))
	}
	fmt.Printf("Opening the FIRMS fire map: %s\n", u)
	if err := browser.OpenURL(u.String()); err != nil {
		return failure.Wrap(err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
