package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache contents and database health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, nil, func(cmdCtx context.Context, _ *cache.Manager, store *cache.Store) error {
				stats, err := store.Stats(cmdCtx, time.Now())
				if err != nil {
					return err
				}
				health, healthErr := store.CheckHealth(cmdCtx)

				if asJSON {
					return writeJSON(cmd, statusView{Stats: stats, Health: health})
				}

				out := cmd.OutOrStdout()
				headers := []string{"Metric", "Value"}
				rows := [][]string{
					{"Cached stories", strconv.Itoa(stats.Stories)},
					{"Fresh stories", strconv.Itoa(stats.FreshStories)},
					{"Cached images", strconv.Itoa(stats.Images)},
					{"Database", health.DBPath},
					{"Readable", yesNo(health.Readable)},
					{"Integrity", yesNo(health.IntegrityOK)},
				}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft}))

				if healthErr != nil {
					fmt.Fprintf(out, "warning: %v\n", healthErr)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

type statusView struct {
	Stats  cache.Stats          `json:"stats"`
	Health cache.DatabaseHealth `json:"health"`
}
