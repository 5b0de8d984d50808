package story

import "strings"

// Stage represents one editorial workflow stage of a story.
type Stage string

const (
	StageCreated                  Stage = "created"
	StageEnglishTextApproved      Stage = "english_text_approved"
	StageEnglishAudioApproved     Stage = "english_audio_approved"
	StageEnglishVersionApproved   Stage = "english_version_approved"
	StageMultilingualTextApproved Stage = "multilingual_text_approved"
	StageMultilingualAudio        Stage = "multilingual_audio_approved"
	StagePendingFinalReview       Stage = "pending_final_review"
	StageApproved                 Stage = "approved"
)

var allStages = []Stage{
	StageCreated,
	StageEnglishTextApproved,
	StageEnglishAudioApproved,
	StageEnglishVersionApproved,
	StageMultilingualTextApproved,
	StageMultilingualAudio,
	StagePendingFinalReview,
	StageApproved,
}

var stagePositions = func() map[Stage]int {
	positions := make(map[Stage]int, len(allStages))
	for i, stage := range allStages {
		positions[stage] = i
	}
	return positions
}()

// AllStages returns the ordered list of known workflow stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage. Unknown values fail
// rather than defaulting; callers must treat a failed parse as corrupt data.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stagePositions[normalized]
	return normalized, ok
}

// Position returns the stage's index in the workflow order (0-7), or -1 for
// an unknown stage.
func (s Stage) Position() int {
	pos, ok := stagePositions[s]
	if !ok {
		return -1
	}
	return pos
}

// Valid reports whether the stage is one of the known workflow stages.
func (s Stage) Valid() bool {
	_, ok := stagePositions[s]
	return ok
}

// Next returns the following stage in the workflow. The final stage and
// unknown stages have no successor.
func (s Stage) Next() (Stage, bool) {
	pos, ok := stagePositions[s]
	if !ok || pos == len(allStages)-1 {
		return "", false
	}
	return allStages[pos+1], true
}

// Previous returns the preceding stage in the workflow. The first stage and
// unknown stages have no predecessor.
func (s Stage) Previous() (Stage, bool) {
	pos, ok := stagePositions[s]
	if !ok || pos == 0 {
		return "", false
	}
	return allStages[pos-1], true
}

// Final reports whether the stage is the terminal workflow stage.
func (s Stage) Final() bool {
	return s == StageApproved
}
