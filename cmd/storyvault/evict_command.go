package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
)

func newEvictCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evict <story-id> [story-id...]",
		Short: "Remove cached stories, their image rows, and image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseStoryIDs(args)
			if err != nil {
				return err
			}

			return ctx.withManager(cmd, nil, func(cmdCtx context.Context, mgr *cache.Manager, _ *cache.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					if err := mgr.Evict(cmdCtx, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "Evicted story %d\n", id)
				}
				return nil
			})
		},
	}
	return cmd
}
