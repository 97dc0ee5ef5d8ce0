package utils

import (
	"strings"
	"testing"
)

func TestCleanMarkdownStripsFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```markdown\n# Report\n```", "# Report"},
		{"```\n# Report\n```", "# Report"},
		{"  # Report  ", "# Report"},
		{"# Report", "# Report"},
	}
	for _, tc := range cases {
		if got := CleanMarkdown(tc.in); got != tc.want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderMarkdownHTML(t *testing.T) {
	html, err := RenderMarkdownHTML("# HAL\n\n| FY | EPS |\n|----|-----|\n| 2023 | 17.0 |\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1>") || !strings.Contains(html, "<table>") {
		t.Errorf("rendered html missing expected elements: %s", html)
	}
}
