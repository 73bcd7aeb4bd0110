// Package normalize rewrites raw model output into markup the block
// editor validates cleanly: markdown fences stripped, inline styles
// expanded to longhand, required block classes patched in, and the whole
// document round-tripped through the block parser so the serialized form
// is canonical. Non-block output (plain JS, HTML, text) passes through
// after fence stripping only.
package normalize

import (
	"regexp"
	"strings"
)

var fenceOpenRe = regexp.MustCompile("(?m)^```[a-zA-Z0-9_-]*[ \t]*\r?\n?")
var fenceCloseRe = regexp.MustCompile("(?m)\r?\n?```[ \t]*$")

// Code runs the full normalization pipeline over one model response.
func Code(raw string) string {
	text := StripFences(raw)
	if !strings.Contains(text, "<!-- wp:") {
		return text
	}
	text = RewriteStyles(text)
	text = PatchClasses(text)
	return Canonicalize(text)
}

// StripFences removes leading/trailing markdown code-fence markers and
// trims surrounding whitespace. Fences inside the body are left alone.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") && !strings.HasSuffix(text, "```") {
		return text
	}
	if loc := fenceOpenRe.FindStringIndex(text); loc != nil && loc[0] == 0 {
		text = text[loc[1]:]
	}
	if loc := fenceCloseRe.FindStringIndex(text); loc != nil && loc[1] == len(text) {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}
