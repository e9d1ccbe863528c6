package application

import (
	"strings"
	"testing"
)

func TestMarkdownRendererImpl_Render(t *testing.T) {
	tests := []struct {
		name        string
		markdown    string
		contains    []string
		notContains []string
	}{
		{
			name:     "Paragraph",
			markdown: "hello world",
			contains: []string{"<p>hello world</p>"},
		},
		{
			name:     "Legacy media image",
			markdown: "![diagram](/media/diagram.png)",
			contains: []string{`src="https://api.example.com/media/diagram.png"`, `alt="diagram"`},
		},
		{
			name:        "Absolute image untouched",
			markdown:    "![logo](https://cdn.example.com/logo.png)",
			contains:    []string{`src="https://cdn.example.com/logo.png"`},
			notContains: []string{"api.example.com"},
		},
		{
			name:        "Relative image untouched",
			markdown:    "![local](images/local.png)",
			contains:    []string{`src="images/local.png"`},
			notContains: []string{"api.example.com"},
		},
		{
			name:     "Raw HTML passes through",
			markdown: "<div class=\"note\">raw</div>",
			contains: []string{`<div class="note">raw</div>`},
		},
		{
			name:     "GFM table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "Heading IDs",
			markdown: "## Getting Started",
			contains: []string{`<h2 id="getting-started">Getting Started</h2>`},
		},
	}

	renderer := NewMarkdownRenderer(testAPIRoot + "/")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %q, want it to contain %q", got, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("Render() = %q, should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestTrimAPIRoot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://api.example.com", want: "https://api.example.com"},
		{in: "https://api.example.com/", want: "https://api.example.com"},
		{in: "  https://api.example.com/ ", want: "https://api.example.com"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := trimAPIRoot(tt.in); got != tt.want {
			t.Errorf("trimAPIRoot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
