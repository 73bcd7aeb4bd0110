// Package prompt assembles the system prompt for a generation request.
// Composition is deterministic and side-effect free: the same request,
// override and profile always produce the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"blocksmith/internal/domain"
	"blocksmith/internal/openai"
)

const previewLimit = 1200

// defaultSystemPrompt is the built-in guardrail used when no override is
// configured. It demands raw code or valid block markup and spells out the
// exact serialized block grammar the editor validates against.
const defaultSystemPrompt = `You are an expert JavaScript, HTML, and WordPress block editor programmer. Write only the raw code for the following request. Do not include any explanation, markdown formatting (like ` + "```js or ```html" + `), or any text other than the code itself. Your entire response should be executable in a browser or valid WordPress block markup.

For WordPress block requests, you MUST use the exact block format that WordPress expects:
CRITICAL RULES:
1. Each block comment MUST be on its own line with NO trailing spaces
2. Block names use only lowercase and hyphens (wp:heading, wp:paragraph, wp:group)
3. HTML tags must match the block type exactly (h2 for heading level 2, p for paragraph)
4. Attributes must be valid JSON: {"level":2} not {level:2}
5. Include proper WordPress CSS classes on HTML elements

EXACT FORMATS:
- Heading: <!-- wp:heading {"level":2} -->\n<h2 class="wp-block-heading">Text</h2>\n<!-- /wp:heading -->
- Paragraph: <!-- wp:paragraph -->\n<p>Text</p>\n<!-- /wp:paragraph -->
- Button: <!-- wp:buttons -->\n<div class="wp-block-buttons"><!-- wp:button -->\n<div class="wp-block-button"><a class="wp-block-button__link wp-element-button">Text</a></div>\n<!-- /wp:button --></div>\n<!-- /wp:buttons -->
- Group: <!-- wp:group -->\n<div class="wp-block-group">\n<!-- wp:paragraph -->\n<p>Content</p>\n<!-- /wp:paragraph -->\n</div>\n<!-- /wp:group -->
- Image: <!-- wp:image {"id":123,"sizeSlug":"large","linkDestination":"none"} -->\n<figure class="wp-block-image size-large"><img src="URL" alt="Alt text" class="wp-image-123"/></figure>\n<!-- /wp:image -->`

// visionAddendum is appended (never substituted) when the model can see
// the attached images, so a custom override keeps its instructions.
const visionAddendum = `You can see and analyze the content of the images provided with this request. When asked to extract text or describe image content, create appropriate WordPress blocks with that content.`

// imageUsageNote closes the image manifest for every model, vision or not,
// so the generated markup references the exact URLs supplied.
const imageUsageNote = `When generating WordPress blocks, use the provided images in appropriate blocks like wp:image, wp:cover (with the url attribute), wp:media-text, etc. Use the exact URLs provided.`

// Composed is the assembled system prompt plus observability fields: the
// byte length and a bounded preview safe to log.
type Composed struct {
	System  string
	Bytes   int
	Preview string
}

// Compose builds the final system prompt from the persisted override (or
// the built-in default), the vision addendum when applicable, and the
// textual image manifest.
func Compose(req domain.GenerationRequest, override string, profile openai.ModelProfile) Composed {
	base := strings.TrimSpace(override)
	if base == "" {
		base = defaultSystemPrompt
	}

	var sb strings.Builder
	sb.WriteString(base)

	if profile.SupportsVision && len(req.Images) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(visionAddendum)
	}

	if len(req.Images) > 0 {
		sb.WriteString(manifest(req.Images))
		sb.WriteString("\n\n")
		sb.WriteString(imageUsageNote)
	}

	system := sb.String()
	return Composed{
		System:  system,
		Bytes:   len(system),
		Preview: preview(system),
	}
}

// manifest renders image metadata as text so even text-only models can
// place the images by URL in generated markup.
func manifest(images []domain.ImageRef) string {
	var sb strings.Builder
	sb.WriteString("\n\nImages provided in the request:")
	for i, img := range images {
		fmt.Fprintf(&sb, "\n\nImage %d:", i+1)
		if img.Title != "" {
			sb.WriteString("\n- Title: " + img.Title)
		}
		if img.Alt != "" {
			sb.WriteString("\n- Alt text: " + img.Alt)
		}
		if img.Filename != "" {
			sb.WriteString("\n- Filename: " + img.Filename)
		}
		if img.URL != "" {
			sb.WriteString("\n- URL: " + img.URL)
		}
	}
	return sb.String()
}

func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit]
}
