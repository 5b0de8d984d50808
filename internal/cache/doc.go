// Package cache persists offline mirrors of remote stories in SQLite and
// keeps their image assets on local disk.
//
// Two row types back the cache. CachedStory snapshots one remote story:
// scalar columns plus independently nullable JSON blobs for the nested
// image/gallery/audio/localization/author descriptors. CachedImage tracks one
// downloaded image file through a cache-root-relative path, so the cache
// survives the root directory moving between installs. Stories go stale after
// 24 hours, images after 7 days; image bytes are more expensive to refetch
// than text, so the thresholds differ.
//
// The Manager is the single coordination point between the remote domain
// model and the local rows. Only the Manager writes to the store handle or
// the cache directory; the entities are pure data holders. Mutating
// operations are serialized globally, and a file lock keeps the cache
// directory single-process.
//
// Treat this package as the single source of truth for cache semantics; when
// a row shape changes, update schema.sql and bump schemaVersion.
package cache
