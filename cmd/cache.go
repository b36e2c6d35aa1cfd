package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/amberorigin46/news-ai-auto/internal/cache"
	"github.com/amberorigin46/news-ai-auto/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local briefing cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCacheOnly()
		if err != nil {
			return err
		}
		defer db.Close()

		st, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fresh := st.Present && db.IsFresh(cache.Snapshot{Timestamp: st.Captured.UnixMilli()})
		writeStats(cmd.OutOrStdout(), config.CachePath(), st, fresh, time.Now())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached briefing so the next run fetches a new one",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCacheOnly()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// openCacheOnly opens the store without requiring an API key.
func openCacheOnly() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, _, err := newLogger(cfg, outputStderr)
	if err != nil {
		return nil, err
	}
	return openCache(cfg, &log)
}

func writeStats(w io.Writer, path string, st cache.Stats, fresh bool, now time.Time) {
	fmt.Fprintf(w, "Cache: %s\n", path)
	fmt.Fprintf(w, "Key: %s\n", st.Key)
	fmt.Fprintf(w, "Size: %s\n", formatBytes(st.Size))
	if !st.Present {
		fmt.Fprintln(w, "Briefing: none")
		return
	}
	state := "stale"
	if fresh {
		state = "fresh"
	}
	fmt.Fprintf(w, "Briefing: %d article(s), %d source(s)\n", st.Articles, st.Sources)
	fmt.Fprintf(w, "Captured: %s ago (%s)\n", formatAge(now.Sub(st.Captured)), state)
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
