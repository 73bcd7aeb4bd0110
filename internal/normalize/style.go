package normalize

import (
	"regexp"
	"strings"
)

var styleAttrRe = regexp.MustCompile(`style="([^"]*)"`)

// Placeholder values models leak into inline styles; declarations
// carrying one are dropped outright.
var placeholderValues = map[string]struct{}{
	"undefined":       {},
	"null":            {},
	"nan":             {},
	"[object object]": {},
}

// Longhand emission order. Expanded shorthand declarations are re-emitted
// in this order ahead of everything else; remaining declarations keep
// their original order.
var preferredProps = []string{
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"margin-top", "margin-right", "margin-bottom", "margin-left",
}

type declaration struct {
	prop  string
	value string
}

// RewriteStyles rewrites every double-quoted style attribute in the
// markup: invalid placeholder declarations removed, padding/margin
// shorthand expanded to per-side longhand, declarations re-emitted in the
// stable preferred order.
func RewriteStyles(markup string) string {
	return styleAttrRe.ReplaceAllStringFunc(markup, func(match string) string {
		inner := match[len(`style="`) : len(match)-1]
		return `style="` + rewriteDeclarations(inner) + `"`
	})
}

func rewriteDeclarations(css string) string {
	var decls []declaration
	for _, chunk := range strings.Split(css, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		colon := strings.Index(chunk, ":")
		if colon <= 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(chunk[:colon]))
		value := strings.TrimSpace(chunk[colon+1:])
		if value == "" {
			continue
		}
		if _, bad := placeholderValues[strings.ToLower(value)]; bad {
			continue
		}
		if prop == "padding" || prop == "margin" {
			expanded, ok := expandShorthand(prop, value)
			if ok {
				decls = append(decls, expanded...)
				continue
			}
		}
		decls = append(decls, declaration{prop: prop, value: value})
	}
	return emitDeclarations(decls)
}

// expandShorthand maps the 1–4 value forms of padding/margin onto
// explicit per-side longhand declarations.
func expandShorthand(prop, value string) ([]declaration, bool) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil, false
	}
	return []declaration{
		{prop: prop + "-top", value: top},
		{prop: prop + "-right", value: right},
		{prop: prop + "-bottom", value: bottom},
		{prop: prop + "-left", value: left},
	}, true
}

// emitDeclarations re-serializes declarations: preferred longhand props
// first in their fixed order (last value wins on duplicates), then the
// rest in original order.
func emitDeclarations(decls []declaration) string {
	if len(decls) == 0 {
		return ""
	}
	preferred := make(map[string]string)
	var rest []declaration
	for _, d := range decls {
		if isPreferred(d.prop) {
			preferred[d.prop] = d.value
			continue
		}
		rest = append(rest, d)
	}
	var sb strings.Builder
	for _, prop := range preferredProps {
		if value, ok := preferred[prop]; ok {
			sb.WriteString(prop + ":" + value + ";")
		}
	}
	for _, d := range rest {
		sb.WriteString(d.prop + ":" + d.value + ";")
	}
	return sb.String()
}

func isPreferred(prop string) bool {
	for _, p := range preferredProps {
		if p == prop {
			return true
		}
	}
	return false
}
