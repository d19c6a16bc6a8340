package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/glamour"
	"github.com/ka2n/firms/api"
	"github.com/ka2n/firms/config"
	"github.com/ka2n/firms/log"
	"github.com/ka2n/firms/mcp"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	debugFlag   bool
	noPagerFlag bool

	// session is created once the flags are parsed
	session *api.Session

	// Root command
	rootCmd = &cobra.Command{
		Use:           "firms",
		Short:         "View NASA FIRMS wildfire detections",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `firms fetches active fire detections from the NASA FIRMS API, or from a
local archive of yearly per-country files, and shows them as a report with
count by date and count by country charts.

Online data needs a FIRMS MAP_KEY, set FIRMS_MAP_KEY or pass --map-key.
Apply for one for free at https://firms.modaps.eosdis.nasa.gov/api/area/#mapKey`,
		PersistentPreRunE: setup,
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about firms",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("firms version %s\n", api.Version)
			if api.VersionCommit != "" {
				fmt.Printf("  commit: %s\n", api.VersionCommit)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log HTTP requests and other debug output")
	rootCmd.PersistentFlags().BoolVar(&noPagerFlag, "no-pager", false, "Print the report instead of paging it")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command())
}

// Run executes the main CLI functionality. Ctrl-C cancels in-flight requests.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	if debugFlag {
		log.SetOutput(os.Stderr, slog.LevelDebug)
	}

	cfg, err := config.Load()
	if err != nil {
		return failure.Wrap(err)
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	session = api.NewSession(cfg)
	return nil
}

// output renders markdown sections and shows them in a pager when stdout is a terminal
func output(sections []section) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return failure.Wrap(err)
	}

	var out string
	for _, s := range sections {
		if s.Markdown != "" {
			md, err := renderer.Render(s.Markdown)
			if err != nil {
				return failure.Wrap(err)
			}
			out += md
		}
		if s.Chart != "" {
			out += s.Chart + "\n\n"
		}
	}

	if noPagerFlag || !isatty.IsTerminal(os.Stdout.Fd()) {
		_, err := fmt.Print(out)
		return err
	}
	if err := RunPager(out); err != nil {
		return failure.Wrap(err)
	}
	return nil
}
