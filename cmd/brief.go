package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amberorigin46/news-ai-auto/internal/briefing"
	"github.com/amberorigin46/news-ai-auto/internal/cache"
)

var (
	flagBriefRefresh    bool
	flagBriefJSON       bool
	flagBriefCategories string
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Print the briefing without the TUI",
	Long: `Fetch (or reuse the cached) briefing and print one article per category.

Categories the model skipped are printed as placeholders. With --json the
output is machine-readable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(flagBriefCategories, outputStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		b, err := e.fetcher.FetchBriefing(ctx, e.categories, flagBriefRefresh || e.overridden)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagBriefJSON {
			return writeBriefingJSON(out, e.categories, b)
		}
		writeBriefingText(out, e.categories, b)
		return nil
	},
}

func init() {
	briefCmd.Flags().BoolVar(&flagBriefRefresh, "refresh", false, "ignore the cached briefing")
	briefCmd.Flags().BoolVar(&flagBriefJSON, "json", false, "print JSON")
	briefCmd.Flags().StringVar(&flagBriefCategories, "categories", "", "comma-separated categories (default from config)")
}

type briefOutput struct {
	FromCache bool                    `json:"fromCache"`
	FetchedAt time.Time               `json:"fetchedAt"`
	Articles  []cache.Article         `json:"articles"`
	Sources   []cache.GroundingSource `json:"sources"`
}

func writeBriefingJSON(w io.Writer, categories []string, b *briefing.Briefing) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(briefOutput{
		FromCache: b.FromCache,
		FetchedAt: b.FetchedAt,
		Articles:  briefing.Reconcile(categories, b.Articles),
		Sources:   b.Sources,
	})
}

func writeBriefingText(w io.Writer, categories []string, b *briefing.Briefing) {
	origin := "live"
	if b.FromCache {
		origin = "cached"
	}
	fmt.Fprintf(w, "PULSE 브리핑 · %s · %s\n", origin, briefing.CaptureTime(b.FetchedAt))

	for _, a := range briefing.Reconcile(categories, b.Articles) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%s] %s\n", a.Category, a.Title)
		if a.Error {
			continue
		}
		meta := []string{a.Source}
		if a.URL != "" {
			meta = append(meta, a.URL)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(meta, " · "))
		for _, s := range a.Summary {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}

	if len(b.Sources) > 0 {
		fmt.Fprintf(w, "\n출처 (%d)\n", len(b.Sources))
		for _, s := range b.Sources {
			fmt.Fprintf(w, "  - %s  %s\n", s.Title, s.URI)
		}
	}
}
