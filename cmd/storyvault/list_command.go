package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var staleOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, nil, func(cmdCtx context.Context, _ *cache.Manager, store *cache.Store) error {
				rows, err := store.ListStories(cmdCtx)
				if err != nil {
					return err
				}

				now := time.Now()
				if staleOnly {
					filtered := rows[:0]
					for _, row := range rows {
						if !row.Fresh(now) {
							filtered = append(filtered, row)
						}
					}
					rows = filtered
				}

				if asJSON {
					return writeJSON(cmd, listPayload(rows, now))
				}

				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cached stories")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStoryTable(rows, now))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the listing as JSON")
	cmd.Flags().BoolVar(&staleOnly, "stale", false, "Show only stale entries")
	return cmd
}

type listEntry struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Stage    string    `json:"stage"`
	Locale   string    `json:"locale,omitempty"`
	CachedAt time.Time `json:"cached_at"`
	Fresh    bool      `json:"fresh"`
}

func listPayload(rows []*cache.CachedStory, now time.Time) []listEntry {
	entries := make([]listEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, listEntry{
			ID:       row.ID,
			Title:    row.Title,
			Stage:    row.StageRaw,
			Locale:   row.Locale,
			CachedAt: row.CachedAt,
			Fresh:    row.Fresh(now),
		})
	}
	return entries
}

func renderStoryTable(rows []*cache.CachedStory, now time.Time) string {
	headers := []string{"ID", "Title", "Stage", "Locale", "Cached", "Fresh"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, []string{
			strconv.FormatInt(row.ID, 10),
			row.Title,
			row.StageRaw,
			row.Locale,
			row.CachedAt.Local().Format("2006-01-02 15:04"),
			yesNo(row.Fresh(now)),
		})
	}
	return renderTable(headers, tableRows, aligns)
}
