package testsupport

import (
	"strconv"
	"testing"
	"time"

	"storyvault/internal/cache"
	"storyvault/internal/config"
	"storyvault/internal/story"
)

// MustOpenStore opens a cache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewStory builds a fully populated domain story for tests. The id also seeds
// the document id and slug so fixtures stay distinguishable.
func NewStory(id int64) *story.Story {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	published := created.Add(48 * time.Hour)
	idStr := strconv.FormatInt(id, 10)
	return &story.Story{
		ID:         id,
		DocumentID: "doc-" + idStr,
		Title:      "The Lighthouse Keeper",
		Slug:       "lighthouse-keeper-" + idStr,
		Body:       "Long-form body text.",
		Excerpt:    "A keeper and a storm.",
		Visible:    true,
		Locale:     "en",
		Stage:      story.StageEnglishTextApproved,
		Image: &story.MediaAsset{
			URL:         "https://cdn.example.com/stories/" + idStr + "/cover.jpg",
			Width:       1600,
			Height:      900,
			AltText:     "A lighthouse at dusk",
			ContentType: "image/jpeg",
		},
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
		PublishedAt: &published,
	}
}
