package openai

import (
	"encoding/json"
	"strings"

	"blocksmith/internal/domain"
)

// Chat Completions wire types. Content is either a plain string or an
// ordered list of parts (vision requests), so it stays `any`.
type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         *float64      `json:"temperature,omitempty"`
	TopP                *float64      `json:"top_p,omitempty"`
	PresencePenalty     *float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty    *float64      `json:"frequency_penalty,omitempty"`
	Stop                []string      `json:"stop,omitempty"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *domain.Usage `json:"usage"`
	Error *apiError     `json:"error"`
}

// Responses API wire types.
type responsesRequest struct {
	Model           string             `json:"model"`
	Input           []responsesInput   `json:"input"`
	MaxOutputTokens int                `json:"max_output_tokens,omitempty"`
	Text            *responsesTextSpec `json:"text,omitempty"`
}

type responsesInput struct {
	Role    string          `json:"role"`
	Content []responsesPart `json:"content"`
}

type responsesPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type responsesTextSpec struct {
	Format responsesTextFormat `json:"format"`
}

type responsesTextFormat struct {
	Type string `json:"type"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage *responsesUsage `json:"usage"`
	Error *apiError       `json:"error"`
}

type responsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ExtractText pulls the generated text and token usage out of a raw
// provider body for the given family. ok is false when the body decodes
// but carries no text.
func ExtractText(family APIFamily, raw []byte) (string, *domain.Usage, bool) {
	if family == FamilyResponses {
		var res responsesResponse
		if err := json.Unmarshal(raw, &res); err != nil {
			return "", nil, false
		}
		var sb strings.Builder
		for _, item := range res.Output {
			if item.Type != "message" {
				continue
			}
			for _, part := range item.Content {
				if part.Type == "output_text" {
					sb.WriteString(part.Text)
				}
			}
		}
		text := strings.TrimSpace(sb.String())
		var usage *domain.Usage
		if res.Usage != nil {
			usage = &domain.Usage{
				PromptTokens:     res.Usage.InputTokens,
				CompletionTokens: res.Usage.OutputTokens,
				TotalTokens:      res.Usage.TotalTokens,
			}
		}
		return text, usage, text != ""
	}

	var res chatResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", nil, false
	}
	if len(res.Choices) == 0 {
		return "", res.Usage, false
	}
	text := strings.TrimSpace(res.Choices[0].Message.Content)
	return text, res.Usage, text != ""
}

// ErrorMessage extracts the provider's error.message field from a non-200
// body, falling back to a bounded slice of the raw body.
func ErrorMessage(raw []byte) string {
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	body := strings.TrimSpace(string(raw))
	if len(body) > 300 {
		body = body[:300]
	}
	if body == "" {
		return "unknown API error"
	}
	return body
}
