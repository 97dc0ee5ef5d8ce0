package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromDirectory(t *testing.T) {
	base := t.TempDir()
	reportDir := filepath.Join(base, "prompts", "report")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		t.Fatal(err)
	}

	jsonPrompt := `{"name": "Custom Report", "system_prompt": "json sys"}`
	if err := os.WriteFile(filepath.Join(reportDir, "custom.json"), []byte(jsonPrompt), 0o644); err != nil {
		t.Fatal(err)
	}
	// Hjson variant: comments, unquoted keys, multiline string.
	hjsonPrompt := `{
  # loaded from hjson
  name: Overview
  system_prompt:
    '''
    hjson sys
    '''
}`
	if err := os.WriteFile(filepath.Join(reportDir, "overview.hjson"), []byte(hjsonPrompt), 0o644); err != nil {
		t.Fatal(err)
	}

	Get().Clear()
	if err := LoadFromDirectory(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Get().GetSystemPrompt("report.custom")
	if err != nil || got != "json sys" {
		t.Errorf("report.custom = %q, %v", got, err)
	}
	pt, err := Get().GetPrompt("report.overview")
	if err != nil {
		t.Fatalf("hjson prompt not loaded: %v", err)
	}
	if pt.Category != "report" {
		t.Errorf("category = %q, want report", pt.Category)
	}
}

func TestLoadFromDirectoryMissing(t *testing.T) {
	Get().Clear()
	if err := LoadFromDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing prompts directory")
	}
}
