package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Alice Smith", "Alice Smith"},
		{"bold tags", "Alice <b>Smith</b>", "Alice Smith"},
		{"script removed", `<script>alert("x")</script>Bob`, "Bob"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"trimmed", "  (555) 010-0000  ", "(555) 010-0000"},
		{"only markup", "<i></i>", ""},
		{"encoded markup", "&lt;b&gt;x&lt;/b&gt;", "x"},
		{"double encoded markup", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Bob", "Bob"},
		{"less than in text", "a < b", "a < b"},
		{"quotes", `O'Brien "Bob"`, `O'Brien "Bob"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText_NoMarkupSurvives(t *testing.T) {
	inputs := []string{
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#60;b&#62;bold&#60;/b&#62;",
		"&amp;amp;lt;i&amp;amp;gt;deep",
	}
	for _, in := range inputs {
		if got := Text(in); strings.ContainsAny(got, "<>") {
			t.Errorf("Text(%q) = %q, still contains markup", in, got)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Error("expected nil for nil input")
	}
	in := "<em>Carol</em>"
	got := TextPtr(&in)
	if got == nil || *got != "Carol" {
		t.Errorf("TextPtr = %v, want Carol", got)
	}
	if in != "<em>Carol</em>" {
		t.Error("input must not be modified")
	}
}
