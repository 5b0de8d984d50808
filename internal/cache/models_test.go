package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"storyvault/internal/cache"
	"storyvault/internal/testsupport"
)

func TestStoryFreshness(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		age   time.Duration
		fresh bool
	}{
		{"just cached", 0, true},
		{"one minute under threshold", cache.StoryFreshFor - time.Minute, true},
		{"exactly at threshold", cache.StoryFreshFor, false},
		{"one minute past threshold", cache.StoryFreshFor + time.Minute, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := &cache.CachedStory{CachedAt: now.Add(-tc.age)}
			if got := row.Fresh(now); got != tc.fresh {
				t.Fatalf("Fresh() = %v, want %v for age %s", got, tc.fresh, tc.age)
			}
		})
	}
}

func TestImageFreshness(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		age   time.Duration
		fresh bool
	}{
		{"one hour under threshold", cache.ImageFreshFor - time.Hour, true},
		{"exactly at threshold", cache.ImageFreshFor, false},
		{"one hour past threshold", cache.ImageFreshFor + time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := &cache.CachedImage{CachedAt: now.Add(-tc.age)}
			if got := img.Fresh(now); got != tc.fresh {
				t.Fatalf("Fresh() = %v, want %v for age %s", got, tc.fresh, tc.age)
			}
		})
	}
}

func TestParseImageType(t *testing.T) {
	if parsed, ok := cache.ParseImageType("  Gallery "); !ok || parsed != cache.ImageGallery {
		t.Fatalf("ParseImageType normalized = %q, %v", parsed, ok)
	}
	if _, ok := cache.ParseImageType("poster"); ok {
		t.Fatal("expected unknown image type to be rejected")
	}
}

func TestImageAbsolutePath(t *testing.T) {
	img := &cache.CachedImage{LocalPath: filepath.Join("42", "main-cover-abcd1234.jpg")}

	abs, ok := img.AbsolutePath("/var/cache/images")
	if !ok {
		t.Fatal("expected path resolution with a root")
	}
	if want := filepath.Join("/var/cache/images", "42", "main-cover-abcd1234.jpg"); abs != want {
		t.Fatalf("AbsolutePath = %q, want %q", abs, want)
	}

	if _, ok := img.AbsolutePath("  "); ok {
		t.Fatal("expected resolution to fail without a root")
	}
}

func TestImageFileExistsHasNoSideEffects(t *testing.T) {
	root := t.TempDir()
	img := &cache.CachedImage{LocalPath: filepath.Join("7", "main-cover-abcd1234.jpg")}

	if img.FileExists(root) {
		t.Fatal("expected missing file to report false")
	}
	if img.LastVerifiedAt != nil {
		t.Fatal("FileExists must not touch LastVerifiedAt")
	}

	abs, _ := img.AbsolutePath(root)
	testsupport.WriteFile(t, abs, []byte("jpeg bytes"))

	if !img.FileExists(root) {
		t.Fatal("expected present file to report true")
	}
	if img.LastVerifiedAt != nil {
		t.Fatal("FileExists must not touch LastVerifiedAt")
	}
}
