package openai

// Sampling carries the optional sampling parameters. Zero-equivalent
// values are omitted from the wire body; everything except the token
// limit applies to chat-completions requests only.
type Sampling struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Stop             []string
}

// BuildInput is everything the builder needs to shape one provider
// request. Images must already be resolved: each entry is either a remote
// URL or a base64 data URL; unresolvable images were dropped upstream.
type BuildInput struct {
	Model        string
	Profile      ModelProfile
	SystemPrompt string
	UserPrompt   string
	ImageURLs    []string
	Sampling     Sampling

	// APIMode forces the endpoint family: "chat", "responses" or "auto".
	APIMode string
	// AllowResponsesImages permits image parts on the responses family.
	// Off by default: images on a reasoning model fall back to chat.
	AllowResponsesImages bool
}

// DecideFamily picks the endpoint family for a request. An explicit mode
// wins, except that "responses" is only honored for models that actually
// speak it. In auto mode a responses-family model carrying images is
// forced back to chat unless responses images are enabled.
func DecideFamily(in BuildInput) APIFamily {
	hasImages := len(in.ImageURLs) > 0
	switch in.APIMode {
	case "chat":
		return FamilyChat
	case "responses":
		if in.Profile.Family != FamilyResponses {
			return FamilyChat
		}
		if hasImages && !in.AllowResponsesImages {
			return FamilyChat
		}
		return FamilyResponses
	}
	if in.Profile.Family == FamilyResponses {
		if hasImages && !in.AllowResponsesImages {
			return FamilyChat
		}
		return FamilyResponses
	}
	return FamilyChat
}

// Build shapes the provider request body and returns the family selecting
// the target endpoint.
func Build(in BuildInput) (any, APIFamily) {
	family := DecideFamily(in)
	if family == FamilyResponses {
		return buildResponses(in), FamilyResponses
	}
	if len(in.ImageURLs) > 0 && in.Profile.SupportsVision {
		return buildChatVision(in), FamilyChat
	}
	return buildChatText(in), FamilyChat
}

func buildChatText(in BuildInput) chatRequest {
	req := chatRequest{
		Model: in.Model,
		Messages: []chatMessage{
			{Role: "system", Content: in.SystemPrompt},
			{Role: "user", Content: in.UserPrompt},
		},
	}
	applyTokenLimit(&req, in.Profile, in.Sampling.MaxTokens)
	applySampling(&req, in.Profile, in.Sampling)
	return req
}

// buildChatVision sends a single user message: one text part with the
// system and user prompts concatenated, then one image part per image.
// Vision-capable chat models reject a separate system message alongside
// image content less gracefully than they accept this shape.
func buildChatVision(in BuildInput) chatRequest {
	parts := []chatContentPart{
		{Type: "text", Text: joinPrompts(in.SystemPrompt, in.UserPrompt)},
	}
	for _, url := range in.ImageURLs {
		parts = append(parts, chatContentPart{
			Type:     "image_url",
			ImageURL: &chatImageURL{URL: url, Detail: "auto"},
		})
	}
	req := chatRequest{
		Model:    in.Model,
		Messages: []chatMessage{{Role: "user", Content: parts}},
	}
	applyTokenLimit(&req, in.Profile, in.Sampling.MaxTokens)
	applySampling(&req, in.Profile, in.Sampling)
	return req
}

func buildResponses(in BuildInput) responsesRequest {
	parts := []responsesPart{
		{Type: "input_text", Text: joinPrompts(in.SystemPrompt, in.UserPrompt)},
	}
	if in.AllowResponsesImages {
		for _, url := range in.ImageURLs {
			parts = append(parts, responsesPart{Type: "input_image", ImageURL: url})
		}
	}
	return responsesRequest{
		Model:           in.Model,
		Input:           []responsesInput{{Role: "user", Content: parts}},
		MaxOutputTokens: in.Sampling.MaxTokens,
		Text:            &responsesTextSpec{Format: responsesTextFormat{Type: "text"}},
	}
}

func applyTokenLimit(req *chatRequest, profile ModelProfile, maxTokens int) {
	if maxTokens <= 0 {
		return
	}
	if profile.TokenLimitParam == ParamMaxCompletionTokens {
		req.MaxCompletionTokens = maxTokens
		return
	}
	req.MaxTokens = maxTokens
}

func applySampling(req *chatRequest, profile ModelProfile, s Sampling) {
	if !profile.TemperatureLocked {
		req.Temperature = floatPtr(s.Temperature)
	}
	if s.TopP > 0 && s.TopP < 1 {
		req.TopP = floatPtr(s.TopP)
	}
	if s.PresencePenalty != 0 {
		req.PresencePenalty = floatPtr(s.PresencePenalty)
	}
	if s.FrequencyPenalty != 0 {
		req.FrequencyPenalty = floatPtr(s.FrequencyPenalty)
	}
	if len(s.Stop) > 0 {
		req.Stop = s.Stop
	}
}

func joinPrompts(system, user string) string {
	if system == "" {
		return user
	}
	return system + "\n\n" + user
}

func floatPtr(f float64) *float64 { return &f }
