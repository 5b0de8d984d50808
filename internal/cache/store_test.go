package cache_test

import (
	"context"
	"testing"
	"time"

	"storyvault/internal/cache"
	"storyvault/internal/testsupport"
)

func TestStoreUpsertAndGetStory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	st := testsupport.NewStory(7)
	row, _ := cache.NewCachedStory(st, time.Now())
	if err := store.UpsertStory(ctx, row); err != nil {
		t.Fatalf("UpsertStory failed: %v", err)
	}

	fetched, err := store.GetStory(ctx, 7)
	if err != nil {
		t.Fatalf("GetStory failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected stored row")
	}
	if fetched.Title != st.Title || fetched.DocumentID != st.DocumentID {
		t.Fatalf("unexpected row: %#v", fetched)
	}
	if !fetched.Visible {
		t.Fatal("visible flag lost")
	}
	if !fetched.CachedAt.Equal(row.CachedAt) {
		t.Fatalf("CachedAt = %s, want %s", fetched.CachedAt, row.CachedAt)
	}
	if fetched.PublishedAt == nil || !fetched.PublishedAt.Equal(*st.PublishedAt) {
		t.Fatalf("PublishedAt = %v", fetched.PublishedAt)
	}

	back, err := fetched.Story()
	if err != nil {
		t.Fatalf("reconstruct failed: %v", err)
	}
	if back.Image == nil || back.Image.URL != st.Image.URL {
		t.Fatalf("image did not survive storage: %#v", back.Image)
	}
}

func TestStoreUpsertReplacesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	st := testsupport.NewStory(11)
	first, _ := cache.NewCachedStory(st, time.Now().Add(-time.Hour))
	if err := store.UpsertStory(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	st.Title = "Revised Title"
	second, _ := cache.NewCachedStory(st, time.Now())
	if err := store.UpsertStory(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	fetched, err := store.GetStory(ctx, 11)
	if err != nil {
		t.Fatalf("GetStory failed: %v", err)
	}
	if fetched.Title != "Revised Title" {
		t.Fatalf("expected last write to win, got %q", fetched.Title)
	}
	if !fetched.CachedAt.Equal(second.CachedAt) {
		t.Fatal("expected CachedAt to advance with the new snapshot")
	}
}

func TestStoreGetStoryAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	fetched, err := store.GetStory(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetStory failed: %v", err)
	}
	if fetched != nil {
		t.Fatalf("expected nil for absent story, got %#v", fetched)
	}
}

func TestStoreListStoriesNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Hour)
	for i, id := range []int64{1, 2, 3} {
		row, _ := cache.NewCachedStory(testsupport.NewStory(id), base.Add(time.Duration(i)*time.Hour))
		if err := store.UpsertStory(ctx, row); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}

	listed, err := store.ListStories(ctx)
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 stories, got %d", len(listed))
	}
	if listed[0].ID != 3 || listed[2].ID != 1 {
		t.Fatalf("unexpected order: %d, %d, %d", listed[0].ID, listed[1].ID, listed[2].ID)
	}
}

func TestStoreImageLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	img := &cache.CachedImage{
		ID:          "img-1",
		NetworkURL:  "https://cdn.example.com/stories/7/cover.jpg",
		LocalPath:   "7/main-cover-abcd1234.jpg",
		ImageType:   cache.ImageMain,
		Width:       1600,
		Height:      900,
		AltText:     "A lighthouse at dusk",
		ContentType: "image/jpeg",
		FileSize:    12345,
		StoryID:     7,
		CachedAt:    time.Now().UTC(),
	}
	if err := store.InsertImage(ctx, img); err != nil {
		t.Fatalf("InsertImage failed: %v", err)
	}

	found, err := store.FindImage(ctx, 7, img.NetworkURL)
	if err != nil {
		t.Fatalf("FindImage failed: %v", err)
	}
	if found == nil || found.ID != "img-1" || found.LocalPath != img.LocalPath {
		t.Fatalf("unexpected image: %#v", found)
	}
	if found.LastVerifiedAt != nil {
		t.Fatal("LastVerifiedAt should start unset")
	}

	verifiedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.MarkImageVerified(ctx, "img-1", verifiedAt); err != nil {
		t.Fatalf("MarkImageVerified failed: %v", err)
	}
	found, err = store.FindImage(ctx, 7, img.NetworkURL)
	if err != nil {
		t.Fatalf("FindImage after verify failed: %v", err)
	}
	if found.LastVerifiedAt == nil || !found.LastVerifiedAt.Equal(verifiedAt) {
		t.Fatalf("LastVerifiedAt = %v, want %s", found.LastVerifiedAt, verifiedAt)
	}

	byStory, err := store.ImagesByStory(ctx, 7)
	if err != nil {
		t.Fatalf("ImagesByStory failed: %v", err)
	}
	if len(byStory) != 1 {
		t.Fatalf("expected 1 image, got %d", len(byStory))
	}

	deleted, err := store.DeleteImagesByStory(ctx, 7)
	if err != nil {
		t.Fatalf("DeleteImagesByStory failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}
}

func TestStoreUniqueImagePerStoryAndURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	img := &cache.CachedImage{
		ID:         "img-a",
		NetworkURL: "https://cdn.example.com/shared.jpg",
		LocalPath:  "7/main-shared-aaaa.jpg",
		ImageType:  cache.ImageMain,
		StoryID:    7,
		CachedAt:   time.Now().UTC(),
	}
	if err := store.InsertImage(ctx, img); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	dup := *img
	dup.ID = "img-b"
	if err := store.InsertImage(ctx, &dup); err == nil {
		t.Fatal("expected duplicate (story, url) insert to fail")
	}

	other := *img
	other.ID = "img-c"
	other.StoryID = 8
	other.LocalPath = "8/main-shared-aaaa.jpg"
	if err := store.InsertImage(ctx, &other); err != nil {
		t.Fatalf("same URL under another story should insert: %v", err)
	}
}

func TestStoreStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	now := time.Now()

	fresh, _ := cache.NewCachedStory(testsupport.NewStory(1), now.Add(-time.Hour))
	stale, _ := cache.NewCachedStory(testsupport.NewStory(2), now.Add(-25*time.Hour))
	for _, row := range []*cache.CachedStory{fresh, stale} {
		if err := store.UpsertStory(ctx, row); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	stats, err := store.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Stories != 2 || stats.FreshStories != 1 || stats.Images != 0 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
}

func TestStoreCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Readable || !health.IntegrityOK {
		t.Fatalf("unexpected health: %#v", health)
	}
	if health.DBPath != cfg.DatabasePath() {
		t.Fatalf("DBPath = %q, want %q", health.DBPath, cfg.DatabasePath())
	}
}
