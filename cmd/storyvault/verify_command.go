package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "verify <story-id> [story-id...]",
		Short: "Check cached image files and restore missing ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseStoryIDs(args)
			if err != nil {
				return err
			}

			var downloader cache.Downloader
			if !offline {
				downloader, err = ctx.newDownloader()
				if err != nil {
					return err
				}
			}

			return ctx.withManager(cmd, downloader, func(cmdCtx context.Context, mgr *cache.Manager, _ *cache.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					result, err := mgr.Verify(cmdCtx, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Story %d: %d images checked, %d present, %d restored\n",
						result.StoryID, result.Checked, result.Present, result.Redownloaded)
					for _, url := range result.Missing {
						fmt.Fprintf(out, "  missing: %s\n", url)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Report missing files without re-downloading")
	return cmd
}
