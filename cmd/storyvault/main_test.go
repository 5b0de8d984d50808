package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q

[cms]
base_url = "https://cms.invalid/v1"
api_token = "test"

[logging]
level = "error"
`, filepath.Join(base, "cache"), filepath.Join(base, "logs"))

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

const testStoryJSON = `{
	"id": 7,
	"document_id": "doc-7",
	"title": "The Lighthouse Keeper",
	"slug": "lighthouse-keeper",
	"body": "Body text.",
	"visible": true,
	"locale": "en",
	"workflow_stage": "english_text_approved",
	"image": {"url": "https://cdn.example.com/7/cover.jpg", "width": 1600},
	"created_at": "2026-03-14T09:30:00Z",
	"updated_at": "2026-03-14T10:30:00Z"
}`

func TestConfigInit(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	target := filepath.Join(base, "fresh", "config.toml")
	out, err := runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestListEmpty(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No cached stories")
}

func TestImportShowEvictFlow(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	payloadPath := filepath.Join(base, "story.json")
	if err := os.WriteFile(payloadPath, []byte(testStoryJSON), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out, err := runCLI(t, configPath, "import", "--images=false", payloadPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Cached story 7")
	requireContains(t, out, "deferred")

	out, err = runCLI(t, configPath, "show", "7")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "The Lighthouse Keeper")
	requireContains(t, out, "english_text_approved")

	out, err = runCLI(t, configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Lighthouse")

	out, err = runCLI(t, configPath, "evict", "7")
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	requireContains(t, out, "Evicted story 7")

	if _, err = runCLI(t, configPath, "show", "7"); err == nil {
		t.Fatal("expected show after evict to fail")
	}
}

func TestInvalidStoryID(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	if _, err := runCLI(t, configPath, "show", "not-a-number"); err == nil {
		t.Fatal("expected invalid id to fail")
	}
	if _, err := runCLI(t, configPath, "evict", "0"); err == nil {
		t.Fatal("expected zero id to fail")
	}
}
