package cache

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"storyvault/internal/fileutil"
)

// Freshness thresholds. A row older than its threshold is stale and should
// be refreshed from the network when possible.
const (
	StoryFreshFor = 24 * time.Hour
	ImageFreshFor = 7 * 24 * time.Hour
)

// Sentinel errors surfaced by the cache layer.
var (
	// ErrNotCached indicates no cached row exists for the requested story.
	ErrNotCached = errors.New("story not cached")
	// ErrCorrupt indicates a cached row exists but cannot be reconstructed.
	ErrCorrupt = errors.New("cached story is corrupt")
	// ErrUnknownStage indicates a stored workflow stage tag no longer parses.
	ErrUnknownStage = errors.New("unknown workflow stage")
	// ErrCacheLocked indicates another process holds the cache directory lock.
	ErrCacheLocked = errors.New("cache directory locked by another process")
	// ErrLowDiskSpace indicates downloads were refused to protect free space.
	ErrLowDiskSpace = errors.New("insufficient free disk space")
)

// ImageType classifies the role a cached image plays within its story.
type ImageType string

const (
	ImageMain      ImageType = "main"
	ImageGallery   ImageType = "gallery"
	ImageThumbnail ImageType = "thumbnail"
	ImageOther     ImageType = "other"
)

var imageTypeSet = map[ImageType]struct{}{
	ImageMain:      {},
	ImageGallery:   {},
	ImageThumbnail: {},
	ImageOther:     {},
}

// ParseImageType converts a string into a known ImageType.
func ParseImageType(value string) (ImageType, bool) {
	normalized := ImageType(strings.ToLower(strings.TrimSpace(value)))
	_, ok := imageTypeSet[normalized]
	return normalized, ok
}

// CachedStory is the persisted snapshot of one remote story. Scalar fields
// are copied verbatim; the five nested descriptors are held as JSON blobs,
// each independently nullable. CachedAt is local-authoritative and is the
// sole basis for freshness.
type CachedStory struct {
	ID         int64
	DocumentID string
	Title      string
	Slug       string
	Body       string
	Excerpt    string
	Visible    bool
	Locale     string

	ImageJSON         []byte
	GalleryJSON       []byte
	AudioJSON         []byte
	LocalizationsJSON []byte
	AuthorJSON        []byte

	StageRaw    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
	CachedAt    time.Time
}

// Fresh reports whether the snapshot is younger than StoryFreshFor.
func (s *CachedStory) Fresh(now time.Time) bool {
	return now.Sub(s.CachedAt) < StoryFreshFor
}

// CachedImage is the persisted record of one downloaded image asset.
// LocalPath is always relative to the configured cache image root; the
// absolute location is derived on demand so the cache survives the root
// moving between installs. StoryID is a lookup relation, not an ownership
// construct: a story's images are found by querying on it.
type CachedImage struct {
	ID          string
	NetworkURL  string
	LocalPath   string
	ImageType   ImageType
	Width       int
	Height      int
	AltText     string
	Caption     string
	ContentType string
	FileSize    int64
	StoryID     int64

	CachedAt       time.Time
	LastVerifiedAt *time.Time
}

// Fresh reports whether the image is younger than ImageFreshFor.
func (i *CachedImage) Fresh(now time.Time) bool {
	return now.Sub(i.CachedAt) < ImageFreshFor
}

// AbsolutePath joins the cache image root with the stored relative path.
// Returns false when no root is available.
func (i *CachedImage) AbsolutePath(root string) (string, bool) {
	root = strings.TrimSpace(root)
	if root == "" || i.LocalPath == "" {
		return "", false
	}
	return filepath.Join(root, i.LocalPath), true
}

// FileExists stats the backing file at call time. It has no side effects and
// never updates LastVerifiedAt; explicit verification is the Manager's job.
// The result can go stale between checks.
func (i *CachedImage) FileExists(root string) bool {
	abs, ok := i.AbsolutePath(root)
	if !ok {
		return false
	}
	return fileutil.FileExists(abs)
}
