package cli

import (
	"fmt"
	"strings"

	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/source"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	mapKeyFlag string
	sourceArg  sourceFlag

	countriesCmd = &cobra.Command{
		Use:   "countries [filter]",
		Short: "List country codes and names",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCountries,
	}

	availabilityCmd = &cobra.Command{
		Use:   "availability",
		Short: "Show the date range a source has",
		RunE:  runAvailability,
	}

	mapKeyCmd = &cobra.Command{
		Use:   "mapkey",
		Short: "Show MAP_KEY transaction usage",
		RunE:  runMapKey,
	}
)

func init() {
	availabilityCmd.Flags().VarP(&sourceArg, "source", "s", "Data source (default MODIS_SP)")
	for _, c := range []*cobra.Command{availabilityCmd, mapKeyCmd} {
		c.Flags().StringVar(&mapKeyFlag, "map-key", "", "FIRMS MAP_KEY (default $FIRMS_MAP_KEY)")
	}
	rootCmd.AddCommand(countriesCmd, availabilityCmd, mapKeyCmd)
}

func runCountries(cmd *cobra.Command, args []string) error {
	cat, err := session.Catalog(cmd.Context())
	if err != nil {
		return err
	}

	filter := ""
	if len(args) == 1 {
		filter = strings.ToLower(args[0])
	}

	var b strings.Builder
	b.WriteString("| Code | Name |\n| --- | --- |\n")
	for _, c := range cat.Countries() {
		if filter != "" && !strings.Contains(strings.ToLower(c.Name), filter) && !strings.EqualFold(c.Code, filter) {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", c.Code, c.Name)
	}
	return output([]section{{Markdown: "## Countries\n\n" + b.String()}})
}

func runAvailability(cmd *cobra.Command, args []string) error {
	src := source.Default
	if sourceArg.IsSet {
		src = sourceArg.Value
	}
	a, err := session.Availability(cmd.Context(), mapKeyFlag, src)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s): %s to %s\n", src, src.DisplayName(),
		a.MinDate.Format(firms.DateLayout), a.MaxDate.Format(firms.DateLayout))
	return nil
}

func runMapKey(cmd *cobra.Command, args []string) error {
	status, err := session.MapKeyStatus(cmd.Context(), mapKeyFlag)
	if failure.Is(err, firms.ErrInvalidMapKey) {
		return failure.Wrap(err, failure.Message("Invalid MAP_KEY"))
	}
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}
