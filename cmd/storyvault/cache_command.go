package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
	"storyvault/internal/services/cms"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache <story-id> [story-id...]",
		Short: "Fetch stories from the CMS and cache them for offline use",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseStoryIDs(args)
			if err != nil {
				return err
			}

			fetcher, err := ctx.newFetcher()
			if err != nil {
				return err
			}
			downloader, err := ctx.newDownloader()
			if err != nil {
				return err
			}

			return ctx.withManager(cmd, downloader, func(cmdCtx context.Context, mgr *cache.Manager, _ *cache.Store) error {
				for _, id := range ids {
					if err := cacheOne(cmdCtx, cmd, fetcher, mgr, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func cacheOne(ctx context.Context, cmd *cobra.Command, fetcher cms.Fetcher, mgr *cache.Manager, id int64) error {
	st, err := fetcher.FetchStory(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch story %d: %w", id, err)
	}

	result, err := mgr.Cache(ctx, st)
	if err != nil {
		return err
	}
	reportCacheResult(cmd, st.Title, result)
	return nil
}

func reportCacheResult(cmd *cobra.Command, title string, result *cache.CacheResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cached story %d (%s): %d images downloaded, %d already cached\n",
		result.StoryID, title, result.Downloaded, result.Skipped)
	if result.Deferred > 0 {
		fmt.Fprintf(out, "  %d images deferred until network access is available\n", result.Deferred)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "  warning: %s: %v\n", failure.URL, failure.Err)
	}
}

func parseStoryIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid story id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
