package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/legalai/core/internal/transcache"
)

func newCacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local translation cache",
	}
	cmd.AddCommand(newCacheStatsCmd(g), newCacheClearCmd(g), newCacheInspectCmd(g))
	return cmd
}

func newCacheStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show translation cache size and counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := g.openCache()
			if err != nil {
				return err
			}
			s := cache.Stats(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "backend:\t%s\n", g.backend)
			fmt.Fprintf(w, "entries:\t%d / %d\n", s.CacheSize, transcache.MaxEntries)
			fmt.Fprintf(w, "expiry:\t%s\n", transcache.Expiry)
			fmt.Fprintf(w, "hits:\t%s\n", humanize.Comma(int64(s.Hits)))
			fmt.Fprintf(w, "misses:\t%s\n", humanize.Comma(int64(s.Misses)))
			fmt.Fprintf(w, "hit rate:\t%.1f%%\n", s.HitRate)
			last := "never"
			if s.LastCleanup != nil {
				last = humanize.Time(*s.LastCleanup)
			}
			fmt.Fprintf(w, "last cleanup:\t%s\n", last)
			return w.Flush()
		},
	}
}

func newCacheClearCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := g.openCache()
			if err != nil {
				return err
			}
			if err := cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "translation cache cleared")
			return nil
		},
	}
}

func newCacheInspectCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List cached translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := g.openCache()
			if err != nil {
				return err
			}
			entries := cache.Inspect(cmd.Context())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "translation cache is empty")
				return nil
			}

			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				return entries[keys[i]].Timestamp > entries[keys[j]].Timestamp
			})

			w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "TO\tSTORED\tSIZE\tTEXT")
			for _, k := range keys {
				e := entries[k]
				size, _ := json.Marshal(e)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Data.TargetLanguage,
					humanize.Time(time.UnixMilli(e.Timestamp)),
					humanize.Bytes(uint64(len(size))),
					preview(e.Data.OriginalText, 40),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw persisted mapping")
	return cmd
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
