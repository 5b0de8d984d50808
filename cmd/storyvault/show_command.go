package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
	"storyvault/internal/story"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <story-id>",
		Short: "Display a cached story from local state only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseStoryIDs(args)
			if err != nil {
				return err
			}

			return ctx.withManager(cmd, nil, func(cmdCtx context.Context, mgr *cache.Manager, store *cache.Store) error {
				st, err := mgr.LoadOffline(cmdCtx, ids[0])
				if err != nil {
					return err
				}
				row, err := store.GetStory(cmdCtx, ids[0])
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, showPayload(st, row))
				}
				renderStory(cmd, st, row)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the story as JSON")
	return cmd
}

type showView struct {
	Story    *story.Story `json:"story"`
	CachedAt time.Time    `json:"cached_at"`
	Fresh    bool         `json:"fresh"`
}

func showPayload(st *story.Story, row *cache.CachedStory) showView {
	return showView{
		Story:    st,
		CachedAt: row.CachedAt,
		Fresh:    row.Fresh(time.Now()),
	}
}

func renderStory(cmd *cobra.Command, st *story.Story, row *cache.CachedStory) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Story %d: %s\n", st.ID, st.Title)
	fmt.Fprintf(out, "  Stage:    %s (%d/%d)\n", st.Stage, st.Stage.Position()+1, len(story.AllStages()))
	fmt.Fprintf(out, "  Locale:   %s\n", st.Locale)
	fmt.Fprintf(out, "  Visible:  %s\n", yesNo(st.Visible))
	if st.Author != nil {
		fmt.Fprintf(out, "  Author:   %s\n", st.Author.Name)
	}
	fmt.Fprintf(out, "  Cached:   %s (fresh: %s)\n",
		row.CachedAt.Local().Format(time.RFC3339), yesNo(row.Fresh(time.Now())))
	if st.PublishedAt != nil {
		fmt.Fprintf(out, "  Published: %s\n", st.PublishedAt.Local().Format(time.RFC3339))
	}

	if st.Image != nil {
		fmt.Fprintf(out, "  Image:    %s\n", st.Image.URL)
	}
	for _, asset := range st.Gallery {
		fmt.Fprintf(out, "  Gallery:  %s\n", asset.URL)
	}
	if st.Audio != nil {
		fmt.Fprintf(out, "  Audio:    %d language(s)\n", len(st.Audio.URLs))
	}
	if len(st.Localizations) > 0 {
		fmt.Fprintf(out, "  Localizations: %d\n", len(st.Localizations))
	}
	if st.Excerpt != "" {
		fmt.Fprintf(out, "\n  %s\n", st.Excerpt)
	}
}
