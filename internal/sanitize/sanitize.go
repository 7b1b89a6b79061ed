// Package sanitize strips markup from user-supplied text before it is
// stored. Contact fields are plain text; any HTML tags a client sends are
// removed and entities are decoded so "Tom &amp; Jerry" reads as typed.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// maxPasses bounds how many layers of entity encoding Text will peel.
const maxPasses = 8

// Text removes every HTML element from input, decodes entities, and trims
// surrounding whitespace. Script and style bodies are dropped entirely.
// Decoding can surface markup that was entity-encoded ("&lt;b&gt;"), so the
// strip and decode repeat until the text stops changing. Input still
// changing after maxPasses is returned in its escaped, tag-free form.
func Text(input string) string {
	if input == "" {
		return ""
	}

	p := getPolicy()
	text := input
	for range maxPasses {
		next := html.UnescapeString(p.Sanitize(text))
		if next == text {
			return strings.TrimSpace(text)
		}
		text = next
	}
	return strings.TrimSpace(p.Sanitize(text))
}

// TextPtr applies Text to *p when p is non-nil. Used for partial updates
// where an absent field must stay absent.
func TextPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := Text(*p)
	return &s
}
