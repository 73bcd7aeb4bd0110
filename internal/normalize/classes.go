package normalize

import (
	"regexp"
	"strings"
)

// Class patching covers the two block types whose generated markup most
// often fails editor validation: headings missing the wp-block-heading
// base class, and button links missing wp-element-button or the modifier
// classes implied by their inline styles.

var headingTagRe = regexp.MustCompile(`<h([1-6])((?:[^>"]|"[^"]*")*)>`)
var anchorTagRe = regexp.MustCompile(`<a((?:[^>"]|"[^"]*")*)>`)
var classAttrRe = regexp.MustCompile(`class="([^"]*)"`)
var colorPropRe = regexp.MustCompile(`(^|;|\s)color\s*:`)

// PatchClasses ensures required base classes and style-implied modifier
// classes on heading and button elements.
func PatchClasses(markup string) string {
	markup = headingTagRe.ReplaceAllStringFunc(markup, func(tag string) string {
		return ensureClasses(tag, []string{"wp-block-heading"})
	})
	markup = anchorTagRe.ReplaceAllStringFunc(markup, func(tag string) string {
		classes := attrValue(tag, classAttrRe)
		if !hasClass(classes, "wp-block-button__link") {
			return tag
		}
		required := []string{"wp-element-button"}
		required = append(required, impliedModifiers(attrValue(tag, styleAttrRe))...)
		return ensureClasses(tag, required)
	})
	return markup
}

// impliedModifiers maps inline style overrides onto the modifier classes
// the editor expects alongside them.
func impliedModifiers(style string) []string {
	var out []string
	lower := strings.ToLower(style)
	if strings.Contains(lower, "background") {
		out = append(out, "has-background")
	}
	if colorPropRe.MatchString(lower) {
		out = append(out, "has-text-color")
	}
	if strings.Contains(lower, "font-size") {
		out = append(out, "has-custom-font-size")
	}
	return out
}

// ensureClasses adds the missing classes to the tag's class attribute,
// creating the attribute when absent.
func ensureClasses(tag string, required []string) string {
	classes := attrValue(tag, classAttrRe)
	var missing []string
	for _, c := range required {
		if !hasClass(classes, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return tag
	}
	if classes == "" && !classAttrRe.MatchString(tag) {
		insert := ` class="` + strings.Join(missing, " ") + `"`
		end := strings.LastIndex(tag, ">")
		return tag[:end] + insert + tag[end:]
	}
	joined := strings.TrimSpace(classes + " " + strings.Join(missing, " "))
	return classAttrRe.ReplaceAllString(tag, `class="`+joined+`"`)
}

func attrValue(tag string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(tag); m != nil {
		return m[1]
	}
	return ""
}

func hasClass(classList, class string) bool {
	for _, c := range strings.Fields(classList) {
		if c == class {
			return true
		}
	}
	return false
}
