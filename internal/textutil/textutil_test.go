package textutil_test

import (
	"testing"

	"storyvault/internal/textutil"
)

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a.jpg", "a_jpg"},
		{"Hero Image (final).PNG", "hero_image__final__png"},
		{"  spaced  ", "spaced"},
		{"___", "unknown"},
		{"", "unknown"},
		{"déjà-vu", "d_j_-vu"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateToken(t *testing.T) {
	if got := textutil.TruncateToken("abcdef", 4); got != "abcd" {
		t.Fatalf("TruncateToken = %q", got)
	}
	if got := textutil.TruncateToken("abc", 10); got != "abc" {
		t.Fatalf("TruncateToken short = %q", got)
	}
	if got := textutil.TruncateToken("ab__cdef", 4); got != "ab" {
		t.Fatalf("TruncateToken separator trim = %q", got)
	}
}
