package normalize

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Block grammar: serialized blocks are HTML comments delimiting regular
// markup. `<!-- wp:name {attrs} -->` opens a block, `<!-- /wp:name -->`
// closes it, `<!-- wp:name {attrs} /-->` is a void block. Names without a
// namespace live in "core/".

var blockTokenRe = regexp.MustCompile(
	`<!--\s+(/)?wp:([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?)(\s+{(?s:.*?)})?\s+?(/)?-->`)

// Block is one parsed block: its namespaced name, raw attribute JSON and
// ordered inner content.
type Block struct {
	Name  string
	Attrs string
	Void  bool
	Inner []Segment
}

// Segment is either raw HTML or a nested block.
type Segment struct {
	HTML  string
	Block *Block
}

// ParseBlocks tokenizes markup into top-level segments. Parsing is
// best-effort: a stray closer becomes plain HTML, unclosed blocks are
// closed implicitly at end of input.
func ParseBlocks(markup string) []Segment {
	var top []Segment
	var stack []*Block

	appendSegment := func(seg Segment) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Inner = append(parent.Inner, seg)
			return
		}
		top = append(top, seg)
	}

	pos := 0
	for _, loc := range blockTokenRe.FindAllStringSubmatchIndex(markup, -1) {
		if loc[0] > pos {
			appendSegment(Segment{HTML: markup[pos:loc[0]]})
		}
		pos = loc[1]

		closer := loc[2] >= 0
		name := canonicalName(markup[loc[4]:loc[5]])
		attrs := ""
		if loc[6] >= 0 {
			attrs = strings.TrimSpace(markup[loc[6]:loc[7]])
		}
		void := loc[8] >= 0

		switch {
		case closer:
			if len(stack) > 0 && stack[len(stack)-1].Name == name {
				block := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				appendSegment(Segment{Block: block})
			} else {
				// Stray closer: keep it as literal HTML rather than
				// guessing at intent.
				appendSegment(Segment{HTML: markup[loc[0]:loc[1]]})
			}
		case void:
			appendSegment(Segment{Block: &Block{Name: name, Attrs: attrs, Void: true}})
		default:
			stack = append(stack, &Block{Name: name, Attrs: attrs})
		}
	}
	if pos < len(markup) {
		appendSegment(Segment{HTML: markup[pos:]})
	}
	// Close unterminated blocks from the inside out.
	for len(stack) > 0 {
		block := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Inner = append(parent.Inner, Segment{Block: block})
		} else {
			top = append(top, Segment{Block: block})
		}
	}
	return top
}

// SerializeBlocks re-emits segments in canonical serialized form:
// normalized comment delimiters, compacted attribute JSON, core/
// namespace elided.
func SerializeBlocks(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		writeSegment(&sb, seg)
	}
	return sb.String()
}

// Canonicalize round-trips markup through the parser and serializer.
// Markup with no recognizable blocks is returned unchanged.
func Canonicalize(markup string) string {
	segments := ParseBlocks(markup)
	if countBlocks(segments) == 0 {
		return markup
	}
	return strings.TrimSpace(SerializeBlocks(segments))
}

func writeSegment(sb *strings.Builder, seg Segment) {
	if seg.Block == nil {
		sb.WriteString(seg.HTML)
		return
	}
	b := seg.Block
	name := serializedName(b.Name)
	attrs := compactAttrs(b.Attrs)
	sb.WriteString("<!-- wp:" + name)
	if attrs != "" {
		sb.WriteString(" " + attrs)
	}
	if b.Void {
		sb.WriteString(" /-->")
		return
	}
	sb.WriteString(" -->")
	for _, inner := range b.Inner {
		writeSegment(sb, inner)
	}
	sb.WriteString("<!-- /wp:" + name + " -->")
}

func countBlocks(segments []Segment) int {
	n := 0
	for _, seg := range segments {
		if seg.Block != nil {
			n++
		}
	}
	return n
}

// canonicalName expands the implicit core/ namespace.
func canonicalName(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return "core/" + name
}

// serializedName elides core/ the way the canonical serializer does.
func serializedName(name string) string {
	return strings.TrimPrefix(name, "core/")
}

// compactAttrs normalizes the attribute JSON without reordering keys.
// Attribute text that is not valid JSON is preserved verbatim; the editor
// will surface it rather than us silently dropping data.
func compactAttrs(attrs string) string {
	if attrs == "" {
		return ""
	}
	if !json.Valid([]byte(attrs)) {
		return attrs
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(attrs)); err != nil {
		return attrs
	}
	return buf.String()
}
