package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"storyvault/internal/config"
	"storyvault/internal/fileutil"
	"storyvault/internal/logging"
	"storyvault/internal/story"
)

// Manager is the single coordination point between the remote domain model
// and the local cache rows. Only the Manager writes to the store or the
// cache directory. Mutating operations (Cache, Verify, Evict) are serialized
// globally; a file lock keeps the cache directory single-process.
type Manager struct {
	cfg        *config.Config
	store      *Store
	downloader Downloader
	logger     *slog.Logger
	lock       *flock.Flock

	mu sync.Mutex
}

// NewManager acquires the cache directory lock and returns a manager.
// Returns ErrCacheLocked when another process holds the lock.
func NewManager(cfg *config.Config, store *Store, downloader Downloader, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrCacheLocked
	}

	return &Manager{
		cfg:        cfg,
		store:      store,
		downloader: downloader,
		logger:     logging.NewComponentLogger(logger, "cache"),
		lock:       lock,
	}, nil
}

// Close releases the cache directory lock.
func (m *Manager) Close() error {
	if m == nil || m.lock == nil {
		return nil
	}
	return m.lock.Unlock()
}

// ImageFailure records one image that could not be downloaded during Cache
// or Verify. Failures are per-image and never abort the surrounding
// operation.
type ImageFailure struct {
	URL string
	Err error
}

// CacheResult summarizes one Cache call. Deferred counts images that were
// not attempted because no downloader is available; a later online Cache or
// Verify pass picks them up.
type CacheResult struct {
	StoryID    int64
	Downloaded int
	Skipped    int
	Deferred   int
	Failures   []ImageFailure
}

type imageRef struct {
	asset story.MediaAsset
	role  ImageType
}

// Cache upserts the story snapshot and ensures every referenced image has a
// local file and row. Existing (story id, URL) rows are left untouched; new
// images are downloaded concurrently, the call completing only once every
// attempt has settled. Per-image failures degrade the result, they do not
// abort it.
func (m *Manager) Cache(ctx context.Context, st *story.Story) (*CacheResult, error) {
	if st == nil {
		return nil, errors.New("story is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, encodeProblems := NewCachedStory(st, time.Now())
	for _, problem := range encodeProblems {
		m.logger.Warn("nested field dropped from snapshot",
			logging.Int64(logging.FieldStoryID, st.ID),
			logging.Error(problem))
	}

	if err := m.store.UpsertStory(ctx, row); err != nil {
		return nil, fmt.Errorf("cache story %d: %w", st.ID, err)
	}

	result := &CacheResult{StoryID: st.ID}

	refs := make([]imageRef, 0, 1+len(st.Gallery))
	if st.Image != nil {
		refs = append(refs, imageRef{asset: *st.Image, role: ImageMain})
	}
	for _, asset := range st.Gallery {
		refs = append(refs, imageRef{asset: asset, role: ImageGallery})
	}

	pending := make([]imageRef, 0, len(refs))
	for _, ref := range refs {
		if ref.asset.URL == "" {
			continue
		}
		existing, err := m.store.FindImage(ctx, st.ID, ref.asset.URL)
		if err != nil {
			return nil, fmt.Errorf("cache story %d: %w", st.ID, err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		pending = append(pending, ref)
	}

	if len(pending) == 0 {
		return result, ctx.Err()
	}

	if m.downloader == nil {
		result.Deferred = len(pending)
		return result, ctx.Err()
	}

	if err := m.checkFreeSpace(); err != nil {
		for _, ref := range pending {
			result.Failures = append(result.Failures, ImageFailure{URL: ref.asset.URL, Err: err})
		}
		m.logger.Warn("skipping image downloads",
			logging.Int64(logging.FieldStoryID, st.ID),
			logging.Error(err))
		return result, nil
	}

	failures := m.downloadAll(ctx, st.ID, pending, &result.Downloaded)
	result.Failures = append(result.Failures, failures...)

	return result, ctx.Err()
}

// downloadAll fans pending downloads out across the configured concurrency
// and waits for every attempt to settle. A row is inserted only after its
// file write fully completes, so cancelled downloads never leave referenced
// partial files.
func (m *Manager) downloadAll(ctx context.Context, storyID int64, pending []imageRef, downloaded *int) []ImageFailure {
	concurrency := m.cfg.Downloads.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
		failures []ImageFailure
	)
	sem := make(chan struct{}, concurrency)

	for _, ref := range pending {
		wg.Add(1)
		go func(ref imageRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := m.fetchImage(ctx, storyID, ref)

			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				failures = append(failures, ImageFailure{URL: ref.asset.URL, Err: err})
				m.logger.Warn("image download failed",
					logging.Int64(logging.FieldStoryID, storyID),
					logging.String(logging.FieldURL, ref.asset.URL),
					logging.Error(err))
				return
			}
			*downloaded++
		}(ref)
	}
	wg.Wait()

	return failures
}

func (m *Manager) fetchImage(ctx context.Context, storyID int64, ref imageRef) error {
	if m.downloader == nil {
		return errors.New("no downloader configured")
	}

	dl, err := m.downloader.Download(ctx, ref.asset.URL)
	if err != nil {
		return err
	}

	relPath := imageRelPath(storyID, ref.role, ref.asset.URL)
	absPath := filepath.Join(m.cfg.ImagesDir(), relPath)
	if err := fileutil.WriteFileAtomic(absPath, dl.Data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}

	contentType := dl.ContentType
	if contentType == "" {
		contentType = ref.asset.ContentType
	}

	img := &CachedImage{
		ID:          uuid.NewString(),
		NetworkURL:  ref.asset.URL,
		LocalPath:   relPath,
		ImageType:   ref.role,
		Width:       ref.asset.Width,
		Height:      ref.asset.Height,
		AltText:     ref.asset.AltText,
		Caption:     ref.asset.Caption,
		ContentType: contentType,
		FileSize:    int64(len(dl.Data)),
		StoryID:     storyID,
		CachedAt:    time.Now().UTC(),
	}
	if err := m.store.InsertImage(ctx, img); err != nil {
		// The row is the source of truth; without it the file is orphaned.
		_ = os.Remove(absPath)
		return err
	}

	m.logger.Debug("image cached",
		logging.Int64(logging.FieldStoryID, storyID),
		logging.String(logging.FieldImageID, img.ID),
		logging.String(logging.FieldURL, img.NetworkURL),
		logging.String(logging.FieldPath, relPath))
	return nil
}

func (m *Manager) checkFreeSpace() error {
	minFree := m.cfg.Downloads.MinFreeMB
	if minFree <= 0 {
		return nil
	}
	free, err := fileutil.FreeBytes(m.cfg.ImagesDir())
	if err != nil {
		// A failed statfs should not block caching; downloads proceed.
		m.logger.Warn("free space check failed", logging.Error(err))
		return nil
	}
	if free < uint64(minFree)<<20 {
		return fmt.Errorf("%w: %d MB free, %d MB required", ErrLowDiskSpace, free>>20, minFree)
	}
	return nil
}

// LoadOffline reconstructs a story entirely from local state. Image URLs are
// replaced with absolute local file paths when the backing file is present,
// so offline rendering needs no network access.
//
// Returns ErrNotCached when no row exists and ErrCorrupt when the row cannot
// be reconstructed; a corrupt story must be treated as unusable offline, not
// rendered with a guessed stage.
func (m *Manager) LoadOffline(ctx context.Context, storyID int64) (*story.Story, error) {
	row, err := m.store.GetStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("load story %d: %w", storyID, err)
	}
	if row == nil {
		return nil, fmt.Errorf("story %d: %w", storyID, ErrNotCached)
	}

	st, err := row.Story()
	if err != nil {
		return nil, fmt.Errorf("story %d: %w: %w", storyID, ErrCorrupt, err)
	}

	images, err := m.store.ImagesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("load story %d images: %w", storyID, err)
	}

	localByURL := make(map[string]string, len(images))
	root := m.cfg.ImagesDir()
	for _, img := range images {
		if !img.FileExists(root) {
			continue
		}
		abs, _ := img.AbsolutePath(root)
		localByURL[img.NetworkURL] = abs
	}

	if st.Image != nil {
		if local, ok := localByURL[st.Image.URL]; ok {
			st.Image.URL = local
		}
	}
	for i := range st.Gallery {
		if local, ok := localByURL[st.Gallery[i].URL]; ok {
			st.Gallery[i].URL = local
		}
	}

	return st, nil
}

// VerifyResult summarizes one Verify pass.
type VerifyResult struct {
	StoryID      int64
	Checked      int
	Present      int
	Redownloaded int
	Missing      []string
}

// Verify checks file presence for every image of a story. Missing files are
// re-downloaded when a downloader is available; otherwise the row is kept
// and the image reported missing for the caller to act on. last_verified_at
// is updated for every checked image regardless of outcome; this pass is
// what keeps that timestamp meaningful.
func (m *Manager) Verify(ctx context.Context, storyID int64) (*VerifyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, err := m.store.GetStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("verify story %d: %w", storyID, err)
	}
	if row == nil {
		return nil, fmt.Errorf("story %d: %w", storyID, ErrNotCached)
	}

	images, err := m.store.ImagesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("verify story %d images: %w", storyID, err)
	}

	result := &VerifyResult{StoryID: storyID}
	root := m.cfg.ImagesDir()
	now := time.Now().UTC()

	for _, img := range images {
		result.Checked++

		if img.FileExists(root) {
			result.Present++
		} else if restored := m.restoreImage(ctx, img); restored {
			result.Redownloaded++
		} else {
			result.Missing = append(result.Missing, img.NetworkURL)
		}

		if err := m.store.MarkImageVerified(ctx, img.ID, now); err != nil {
			return nil, fmt.Errorf("verify story %d: %w", storyID, err)
		}
	}

	return result, nil
}

func (m *Manager) restoreImage(ctx context.Context, img *CachedImage) bool {
	if m.downloader == nil {
		return false
	}
	abs, ok := img.AbsolutePath(m.cfg.ImagesDir())
	if !ok {
		return false
	}

	dl, err := m.downloader.Download(ctx, img.NetworkURL)
	if err != nil {
		m.logger.Warn("image restore failed",
			logging.Int64(logging.FieldStoryID, img.StoryID),
			logging.String(logging.FieldURL, img.NetworkURL),
			logging.Error(err))
		return false
	}
	if err := fileutil.WriteFileAtomic(abs, dl.Data, 0o644); err != nil {
		m.logger.Warn("image restore write failed",
			logging.Int64(logging.FieldStoryID, img.StoryID),
			logging.String(logging.FieldPath, img.LocalPath),
			logging.Error(err))
		return false
	}

	m.logger.Info("image restored",
		logging.Int64(logging.FieldStoryID, img.StoryID),
		logging.String(logging.FieldURL, img.NetworkURL))
	return true
}

// Evict removes a story's row, all its image rows, and their backing files
// as one logical unit. Files are deleted before rows: a file deletion
// failure aborts the eviction so the no-orphaned-files invariant is never
// silently violated.
func (m *Manager) Evict(ctx context.Context, storyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, err := m.store.GetStory(ctx, storyID)
	if err != nil {
		return fmt.Errorf("evict story %d: %w", storyID, err)
	}

	images, err := m.store.ImagesByStory(ctx, storyID)
	if err != nil {
		return fmt.Errorf("evict story %d: %w", storyID, err)
	}

	if row == nil && len(images) == 0 {
		return fmt.Errorf("story %d: %w", storyID, ErrNotCached)
	}

	root := m.cfg.ImagesDir()
	for _, img := range images {
		abs, ok := img.AbsolutePath(root)
		if !ok {
			return fmt.Errorf("evict story %d: cannot resolve path for image %s", storyID, img.ID)
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("evict story %d: remove %s: %w", storyID, img.LocalPath, err)
		}
	}
	// Best effort: drop the story's now-empty image directory.
	_ = os.Remove(filepath.Join(root, fmt.Sprintf("%d", storyID)))

	if _, err := m.store.DeleteImagesByStory(ctx, storyID); err != nil {
		return fmt.Errorf("evict story %d: %w", storyID, err)
	}
	if _, err := m.store.DeleteStory(ctx, storyID); err != nil {
		return fmt.Errorf("evict story %d: %w", storyID, err)
	}

	m.logger.Info("story evicted",
		logging.Int64(logging.FieldStoryID, storyID),
		logging.Int("images_removed", len(images)))
	return nil
}
