package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"storyvault/internal/textutil"
)

const maxBaseNameLen = 40

// imageRelPath derives the cache-root-relative path for an image file from
// the owning story id, the image role, and the remote URL. The name is stable
// for a given (story, role, URL) triple: a short content hash of the URL
// disambiguates assets that share a basename.
func imageRelPath(storyID int64, imageType ImageType, networkURL string) string {
	base := "image"
	ext := ""
	if parsed, err := url.Parse(networkURL); err == nil {
		urlBase := path.Base(parsed.Path)
		if candidate := path.Ext(urlBase); isSafeExt(candidate) {
			ext = strings.ToLower(candidate)
			urlBase = strings.TrimSuffix(urlBase, candidate)
		}
		if sanitized := textutil.SanitizeToken(urlBase); sanitized != "unknown" {
			base = textutil.TruncateToken(sanitized, maxBaseNameLen)
		}
	}

	sum := sha256.Sum256([]byte(networkURL))
	digest := hex.EncodeToString(sum[:4])

	name := fmt.Sprintf("%s-%s-%s%s", imageType, base, digest, ext)
	return filepath.Join(strconv.FormatInt(storyID, 10), name)
}

// isSafeExt accepts short alphanumeric extensions only; anything else is
// folded into the base name instead of trusted as a file extension.
func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
