package cli

import (
	"fmt"

	"github.com/ka2n/firms/api/source"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List FIRMS data sources",
	Long:  "Display the data sources served by the FIRMS API and the local archive",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) {
	fmt.Println("Online Sources:")
	for _, s := range source.Online() {
		marker := " "
		if s == source.Default {
			marker = "*"
		}
		fmt.Printf(" %s %-17s %-32s (%s)\n", marker, s, s.DisplayName(), s.Instrument())
	}

	fmt.Println("\nOffline Sources:")
	fmt.Printf("   %-17s %-32s (%s)\n", source.TypeLocalModis, source.TypeLocalModis.DisplayName(), source.TypeLocalModis.Instrument())
}
