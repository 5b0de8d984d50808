package cache

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"storyvault/internal/story"
)

func TestSnapshotToleratesPartialEncodeFailure(t *testing.T) {
	original := marshalBlob
	t.Cleanup(func() { marshalBlob = original })

	boom := errors.New("audio encoder broken")
	marshalBlob = func(v any) ([]byte, error) {
		if _, ok := v.(*story.AudioBundle); ok {
			return nil, boom
		}
		return json.Marshal(v)
	}

	st := &story.Story{
		ID:    21,
		Title: "Partial",
		Stage: story.StageCreated,
		Image: &story.MediaAsset{URL: "https://cdn.example.com/21/cover.jpg"},
		Audio: &story.AudioBundle{URLs: map[string]string{"en": "https://cdn.example.com/21/audio.mp3"}},
	}

	row, problems := NewCachedStory(st, time.Now())
	if len(problems) != 1 {
		t.Fatalf("expected one encode problem, got %v", problems)
	}
	if !errors.Is(problems[0], boom) || !strings.Contains(problems[0].Error(), "audio") {
		t.Fatalf("problem should name the failed field: %v", problems[0])
	}
	if row.AudioJSON != nil {
		t.Fatal("failed blob must stay unset")
	}
	if len(row.ImageJSON) == 0 {
		t.Fatal("other nested fields must still encode")
	}
	if row.Title != "Partial" {
		t.Fatal("scalars must be copied despite encode failures")
	}
}
