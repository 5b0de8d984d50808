package cms

import (
	"fmt"
	"time"

	"storyvault/internal/story"
)

// storyPayload mirrors the API's story resource representation.
type storyPayload struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Body       string `json:"body"`
	Excerpt    string `json:"excerpt"`
	Visible    bool   `json:"visible"`
	Locale     string `json:"locale"`
	Stage      string `json:"workflow_stage"`

	Image         *story.MediaAsset    `json:"image,omitempty"`
	Gallery       []story.MediaAsset   `json:"gallery,omitempty"`
	Audio         *story.AudioBundle   `json:"audio,omitempty"`
	Localizations []story.Localization `json:"localizations,omitempty"`
	Author        *story.Author        `json:"author,omitempty"`

	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	PublishedAt *string `json:"published_at,omitempty"`
}

func (p storyPayload) toDomain() (*story.Story, error) {
	stage, ok := story.ParseStage(p.Stage)
	if !ok {
		return nil, fmt.Errorf("unrecognized workflow stage %q", p.Stage)
	}

	st := &story.Story{
		ID:            p.ID,
		DocumentID:    p.DocumentID,
		Title:         p.Title,
		Slug:          p.Slug,
		Body:          p.Body,
		Excerpt:       p.Excerpt,
		Visible:       p.Visible,
		Locale:        p.Locale,
		Stage:         stage,
		Image:         p.Image,
		Gallery:       p.Gallery,
		Audio:         p.Audio,
		Localizations: p.Localizations,
		Author:        p.Author,
	}

	var err error
	if st.CreatedAt, err = parseTimestamp(p.CreatedAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if st.UpdatedAt, err = parseTimestamp(p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	if p.PublishedAt != nil && *p.PublishedAt != "" {
		published, err := parseTimestamp(*p.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("published_at: %w", err)
		}
		st.PublishedAt = &published
	}

	return st, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
