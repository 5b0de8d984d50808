package story_test

import (
	"testing"

	"storyvault/internal/story"
)

func TestImageAssetsOrdersPrimaryFirst(t *testing.T) {
	s := &story.Story{
		Image: &story.MediaAsset{URL: "https://cms.example/main.jpg"},
		Gallery: []story.MediaAsset{
			{URL: "https://cms.example/g1.jpg"},
			{URL: "https://cms.example/g2.jpg"},
		},
	}

	assets := s.ImageAssets()
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	if assets[0].URL != "https://cms.example/main.jpg" {
		t.Fatalf("primary image not first: %q", assets[0].URL)
	}
	if assets[1].URL != "https://cms.example/g1.jpg" || assets[2].URL != "https://cms.example/g2.jpg" {
		t.Fatalf("gallery order not preserved: %#v", assets[1:])
	}
}

func TestImageAssetsWithoutImages(t *testing.T) {
	if assets := (&story.Story{}).ImageAssets(); len(assets) != 0 {
		t.Fatalf("expected no assets, got %#v", assets)
	}
	var nilStory *story.Story
	if assets := nilStory.ImageAssets(); assets != nil {
		t.Fatalf("nil story should yield nil assets, got %#v", assets)
	}
}

func TestValidLocale(t *testing.T) {
	for _, value := range []string{"en", "en-US", "pt-BR", "zh-Hant"} {
		if !story.ValidLocale(value) {
			t.Fatalf("expected %q to be a valid locale", value)
		}
	}
	for _, value := range []string{"", "   ", "not a locale!"} {
		if story.ValidLocale(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
