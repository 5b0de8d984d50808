package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"storyvault/internal/story"
)

// marshalBlob encodes one nested descriptor. Tests swap this to exercise the
// partial-encode-failure contract, which plain json.Marshal cannot trigger
// for these types.
var marshalBlob = json.Marshal

// NewCachedStory snapshots a domain story into its persistable form.
//
// Scalars are copied verbatim. Each present nested field is encoded to a JSON
// blob; a failed encode leaves that blob unset and is reported in the
// returned slice rather than aborting the snapshot, so a broken sub-object
// degrades the offline copy instead of losing it.
func NewCachedStory(st *story.Story, now time.Time) (*CachedStory, []error) {
	row := &CachedStory{
		ID:          st.ID,
		DocumentID:  st.DocumentID,
		Title:       st.Title,
		Slug:        st.Slug,
		Body:        st.Body,
		Excerpt:     st.Excerpt,
		Visible:     st.Visible,
		Locale:      st.Locale,
		StageRaw:    string(st.Stage),
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
		PublishedAt: st.PublishedAt,
		CachedAt:    now.UTC(),
	}

	var problems []error
	encode := func(field string, value any) []byte {
		data, err := marshalBlob(value)
		if err != nil {
			problems = append(problems, fmt.Errorf("encode %s: %w", field, err))
			return nil
		}
		return data
	}

	if st.Image != nil {
		row.ImageJSON = encode("image", st.Image)
	}
	if len(st.Gallery) > 0 {
		row.GalleryJSON = encode("gallery", st.Gallery)
	}
	if st.Audio != nil {
		row.AudioJSON = encode("audio", st.Audio)
	}
	if len(st.Localizations) > 0 {
		row.LocalizationsJSON = encode("localizations", st.Localizations)
	}
	if st.Author != nil {
		row.AuthorJSON = encode("author", st.Author)
	}

	return row, problems
}

// Story reconstructs the domain story from the stored row. It is a pure
// function of the row: no network or file I/O.
//
// Nested blobs that fail to decode silently yield absent fields. The one hard
// failure is an unparseable workflow stage tag: a story whose stage cannot be
// determined cannot be safely rendered as any stage, so the whole
// reconstruction fails with ErrUnknownStage.
func (s *CachedStory) Story() (*story.Story, error) {
	stage, ok := story.ParseStage(s.StageRaw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, s.StageRaw)
	}

	st := &story.Story{
		ID:          s.ID,
		DocumentID:  s.DocumentID,
		Title:       s.Title,
		Slug:        s.Slug,
		Body:        s.Body,
		Excerpt:     s.Excerpt,
		Visible:     s.Visible,
		Locale:      s.Locale,
		Stage:       stage,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		PublishedAt: s.PublishedAt,
	}

	if len(s.ImageJSON) > 0 {
		var image story.MediaAsset
		if err := json.Unmarshal(s.ImageJSON, &image); err == nil {
			st.Image = &image
		}
	}
	if len(s.GalleryJSON) > 0 {
		var gallery []story.MediaAsset
		if err := json.Unmarshal(s.GalleryJSON, &gallery); err == nil {
			st.Gallery = gallery
		}
	}
	if len(s.AudioJSON) > 0 {
		var audio story.AudioBundle
		if err := json.Unmarshal(s.AudioJSON, &audio); err == nil {
			st.Audio = &audio
		}
	}
	if len(s.LocalizationsJSON) > 0 {
		var localizations []story.Localization
		if err := json.Unmarshal(s.LocalizationsJSON, &localizations); err == nil {
			st.Localizations = localizations
		}
	}
	if len(s.AuthorJSON) > 0 {
		var author story.Author
		if err := json.Unmarshal(s.AuthorJSON, &author); err == nil {
			st.Author = &author
		}
	}

	return st, nil
}
