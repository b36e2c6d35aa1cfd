package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amberorigin46/news-ai-auto/internal/tui"
	"github.com/amberorigin46/news-ai-auto/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagLogLevel   string
	flagRefresh    bool
	flagCategories string
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "AI news briefing in your terminal",
	Long: `pulse asks a search-grounded AI model for one fresh article per news category
and shows them as a deck of cards. Results are cached locally for a few minutes.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "ignore the cached briefing")
	rootCmd.Flags().StringVar(&flagCategories, "categories", "", "comma-separated categories (default from config)")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(cacheCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pulse %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return
		}
		if r := (update.Checker{}).Check(cmd.Context(), version); r != nil {
			fmt.Fprintf(out, "update available: %s %s\n", r.LatestVersion, r.URL)
		}
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(flagCategories, outputLogFile)
	if err != nil {
		return err
	}
	defer e.Close()

	return tui.Run(tui.RunOpts{
		Fetcher:      e.fetcher,
		Categories:   e.categories,
		ForceRefresh: flagRefresh || e.overridden,
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
