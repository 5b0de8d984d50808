package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
	"storyvault/internal/config"
	"storyvault/internal/services/cms"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var withImages bool

	cmd := &cobra.Command{
		Use:   "import <story.json>",
		Short: "Cache a story from a local JSON payload",
		Long: "Reads a story payload exported from the CMS and caches it without " +
			"contacting the API. Image downloads still require network access and " +
			"can be disabled with --images=false.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open story payload: %w", err)
			}
			defer file.Close()

			st, err := cms.DecodeStory(file)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			var downloader cache.Downloader
			if withImages {
				downloader, err = ctx.newDownloader()
				if err != nil {
					return err
				}
			}

			return ctx.withManager(cmd, downloader, func(cmdCtx context.Context, mgr *cache.Manager, _ *cache.Store) error {
				result, err := mgr.Cache(cmdCtx, st)
				if err != nil {
					return err
				}
				reportCacheResult(cmd, st.Title, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withImages, "images", true, "Download referenced images")
	return cmd
}
