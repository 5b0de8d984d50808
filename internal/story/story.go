package story

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// MediaAsset describes one remote image asset attached to a story.
type MediaAsset struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	AltText     string `json:"alt_text,omitempty"`
	Caption     string `json:"caption,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
}

// AudioBundle holds narration audio URLs keyed by language code.
type AudioBundle struct {
	URLs map[string]string `json:"urls"`
}

// Localization is one translated rendition of a story's text fields.
type Localization struct {
	Locale  string `json:"locale"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Author identifies the account that created a story.
type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Story is the remote CMS entity representing one multilingual narrated
// content item. The five nested fields are independently optional; a story
// may carry no gallery, no audio, and so on.
type Story struct {
	ID         int64
	DocumentID string
	Title      string
	Slug       string
	Body       string
	Excerpt    string
	Visible    bool
	Locale     string
	Stage      Stage

	Image         *MediaAsset
	Gallery       []MediaAsset
	Audio         *AudioBundle
	Localizations []Localization
	Author        *Author

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// ImageAssets returns the story's primary image followed by its gallery
// images. The primary image, when present, is always first.
func (s *Story) ImageAssets() []MediaAsset {
	if s == nil {
		return nil
	}
	assets := make([]MediaAsset, 0, 1+len(s.Gallery))
	if s.Image != nil {
		assets = append(assets, *s.Image)
	}
	assets = append(assets, s.Gallery...)
	return assets
}

// ValidLocale reports whether value parses as a BCP 47 language tag.
// The tag is validated only, never rewritten; cached rows must round-trip
// locale strings byte for byte.
func ValidLocale(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	_, err := language.Parse(trimmed)
	return err == nil
}
