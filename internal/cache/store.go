package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"storyvault/internal/config"
)

// Store manages cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const storyColumns = "id, document_id, title, slug, body, excerpt, visible, locale, image_json, gallery_json, audio_json, localizations_json, author_json, stage_raw, created_at, updated_at, published_at, cached_at"

// UpsertStory replaces or inserts the cached snapshot for a story id.
// Last write wins; there is no merging of partial updates.
func (s *Store) UpsertStory(ctx context.Context, row *CachedStory) error {
	if row == nil {
		return errors.New("cached story is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cached_stories (`+storyColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             document_id = excluded.document_id,
             title = excluded.title,
             slug = excluded.slug,
             body = excluded.body,
             excerpt = excluded.excerpt,
             visible = excluded.visible,
             locale = excluded.locale,
             image_json = excluded.image_json,
             gallery_json = excluded.gallery_json,
             audio_json = excluded.audio_json,
             localizations_json = excluded.localizations_json,
             author_json = excluded.author_json,
             stage_raw = excluded.stage_raw,
             created_at = excluded.created_at,
             updated_at = excluded.updated_at,
             published_at = excluded.published_at,
             cached_at = excluded.cached_at`,
		row.ID,
		row.DocumentID,
		row.Title,
		row.Slug,
		row.Body,
		row.Excerpt,
		boolToInt(row.Visible),
		nullableString(row.Locale),
		nullableBytes(row.ImageJSON),
		nullableBytes(row.GalleryJSON),
		nullableBytes(row.AudioJSON),
		nullableBytes(row.LocalizationsJSON),
		nullableBytes(row.AuthorJSON),
		row.StageRaw,
		row.CreatedAt.UTC().Format(time.RFC3339Nano),
		row.UpdatedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(row.PublishedAt),
		row.CachedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert story: %w", err)
	}
	return nil
}

// GetStory fetches a cached story by id. Returns nil when absent.
func (s *Store) GetStory(ctx context.Context, id int64) (*CachedStory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM cached_stories WHERE id = ?`, id)
	cached, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	return cached, nil
}

// ListStories returns all cached stories ordered by cache time, newest first.
func (s *Store) ListStories(ctx context.Context) ([]*CachedStory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM cached_stories ORDER BY cached_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var stories []*CachedStory
	for rows.Next() {
		cached, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, cached)
	}
	return stories, rows.Err()
}

// DeleteStory removes a cached story row. Reports whether a row was deleted.
func (s *Store) DeleteStory(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cached_stories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete story: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const imageColumns = "id, network_url, local_path, image_type, width, height, alt_text, caption, content_type, file_size, story_id, cached_at, last_verified_at"

// InsertImage records a newly downloaded image. The backing file must already
// be fully written; rows must never reference partial downloads.
func (s *Store) InsertImage(ctx context.Context, img *CachedImage) error {
	if img == nil {
		return errors.New("cached image is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cached_images (`+imageColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID,
		img.NetworkURL,
		img.LocalPath,
		string(img.ImageType),
		nullableInt(img.Width),
		nullableInt(img.Height),
		nullableString(img.AltText),
		nullableString(img.Caption),
		nullableString(img.ContentType),
		nullableInt64(img.FileSize),
		img.StoryID,
		img.CachedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(img.LastVerifiedAt),
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// FindImage returns the image row for a story id and remote URL, or nil.
func (s *Store) FindImage(ctx context.Context, storyID int64, networkURL string) (*CachedImage, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+imageColumns+` FROM cached_images WHERE story_id = ? AND network_url = ?`,
		storyID,
		networkURL,
	)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image: %w", err)
	}
	return img, nil
}

// ImagesByStory returns all image rows for a story ordered by cache time.
func (s *Store) ImagesByStory(ctx context.Context, storyID int64) ([]*CachedImage, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+imageColumns+` FROM cached_images WHERE story_id = ? ORDER BY cached_at, id`,
		storyID,
	)
	if err != nil {
		return nil, fmt.Errorf("images by story: %w", err)
	}
	defer rows.Close()

	var images []*CachedImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImagesByStory removes all image rows for a story id.
func (s *Store) DeleteImagesByStory(ctx context.Context, storyID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cached_images WHERE story_id = ?`, storyID)
	if err != nil {
		return 0, fmt.Errorf("delete images: %w", err)
	}
	return res.RowsAffected()
}

// MarkImageVerified records the outcome of an explicit verification pass.
func (s *Store) MarkImageVerified(ctx context.Context, imageID string, verifiedAt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE cached_images SET last_verified_at = ? WHERE id = ?`,
		verifiedAt.UTC().Format(time.RFC3339Nano),
		imageID,
	)
	if err != nil {
		return fmt.Errorf("mark image verified: %w", err)
	}
	return nil
}

// Stats summarizes cache contents for diagnostic output.
type Stats struct {
	Stories      int
	FreshStories int
	Images       int
}

// Stats returns row counts, with story freshness computed against now.
func (s *Store) Stats(ctx context.Context, now time.Time) (Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cached_stories`).Scan(&stats.Stories); err != nil {
		return Stats{}, fmt.Errorf("count stories: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cached_images`).Scan(&stats.Images); err != nil {
		return Stats{}, fmt.Errorf("count images: %w", err)
	}
	cutoff := now.UTC().Add(-StoryFreshFor).Format(time.RFC3339Nano)
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cached_stories WHERE cached_at > ?`, cutoff).Scan(&stats.FreshStories); err != nil {
		return Stats{}, fmt.Errorf("count fresh stories: %w", err)
	}
	return stats, nil
}

// CheckHealth returns diagnostic information about the cache database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.db == nil {
		return health, errors.New("cache database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping cache database: %w", err)
	}
	health.Readable = true

	var integrityResult string
	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = integrityResult == "ok"

	return health, nil
}

// DatabaseHealth captures diagnostic information about the cache database.
type DatabaseHealth struct {
	DBPath      string
	Readable    bool
	IntegrityOK bool
	Error       string
}

func scanStory(scanner interface{ Scan(dest ...any) error }) (*CachedStory, error) {
	var (
		id           int64
		documentID   string
		title        string
		slug         string
		body         string
		excerpt      string
		visible      int64
		locale       sql.NullString
		imageJSON    []byte
		galleryJSON  []byte
		audioJSON    []byte
		locsJSON     []byte
		authorJSON   []byte
		stageRaw     string
		createdRaw   string
		updatedRaw   string
		publishedRaw sql.NullString
		cachedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&documentID,
		&title,
		&slug,
		&body,
		&excerpt,
		&visible,
		&locale,
		&imageJSON,
		&galleryJSON,
		&audioJSON,
		&locsJSON,
		&authorJSON,
		&stageRaw,
		&createdRaw,
		&updatedRaw,
		&publishedRaw,
		&cachedRaw,
	); err != nil {
		return nil, err
	}

	row := &CachedStory{
		ID:                id,
		DocumentID:        documentID,
		Title:             title,
		Slug:              slug,
		Body:              body,
		Excerpt:           excerpt,
		Visible:           visible != 0,
		Locale:            locale.String,
		ImageJSON:         imageJSON,
		GalleryJSON:       galleryJSON,
		AudioJSON:         audioJSON,
		LocalizationsJSON: locsJSON,
		AuthorJSON:        authorJSON,
		StageRaw:          stageRaw,
	}

	var err error
	if row.CreatedAt, err = parseTimeString(createdRaw); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if row.UpdatedAt, err = parseTimeString(updatedRaw); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if row.CachedAt, err = parseTimeString(cachedRaw); err != nil {
		return nil, fmt.Errorf("parse cached_at: %w", err)
	}
	if publishedRaw.Valid {
		published, err := parseTimeString(publishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse published_at: %w", err)
		}
		row.PublishedAt = &published
	}

	return row, nil
}

func scanImage(scanner interface{ Scan(dest ...any) error }) (*CachedImage, error) {
	var (
		id          string
		networkURL  string
		localPath   string
		imageType   string
		width       sql.NullInt64
		height      sql.NullInt64
		altText     sql.NullString
		caption     sql.NullString
		contentType sql.NullString
		fileSize    sql.NullInt64
		storyID     int64
		cachedRaw   string
		verifiedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&networkURL,
		&localPath,
		&imageType,
		&width,
		&height,
		&altText,
		&caption,
		&contentType,
		&fileSize,
		&storyID,
		&cachedRaw,
		&verifiedRaw,
	); err != nil {
		return nil, err
	}

	img := &CachedImage{
		ID:          id,
		NetworkURL:  networkURL,
		LocalPath:   localPath,
		ImageType:   ImageType(imageType),
		Width:       int(width.Int64),
		Height:      int(height.Int64),
		AltText:     altText.String,
		Caption:     caption.String,
		ContentType: contentType.String,
		FileSize:    fileSize.Int64,
		StoryID:     storyID,
	}

	var err error
	if img.CachedAt, err = parseTimeString(cachedRaw); err != nil {
		return nil, fmt.Errorf("parse cached_at: %w", err)
	}
	if verifiedRaw.Valid {
		verified, err := parseTimeString(verifiedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_verified_at: %w", err)
		}
		img.LastVerifiedAt = &verified
	}

	return img, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, value)
}
