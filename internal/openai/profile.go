package openai

// APIFamily selects which provider endpoint a request targets.
type APIFamily string

const (
	FamilyChat      APIFamily = "chat"
	FamilyResponses APIFamily = "responses"
)

// Token-limit parameter names. Older chat models use max_tokens; the
// gpt-4o/gpt-4-turbo/gpt-5 generation renamed it, and the Responses API
// uses its own name again.
const (
	ParamMaxTokens           = "max_tokens"
	ParamMaxCompletionTokens = "max_completion_tokens"
	ParamMaxOutputTokens     = "max_output_tokens"
)

// ModelProfile captures the capability switches that used to be scattered
// per-call checks: vision support, endpoint family, token parameter name
// and whether the model ignores custom temperature.
type ModelProfile struct {
	SupportsVision    bool
	Family            APIFamily
	TokenLimitParam   string
	TemperatureLocked bool
}

var modelProfiles = map[string]ModelProfile{
	"gpt-3.5-turbo":        {Family: FamilyChat, TokenLimitParam: ParamMaxTokens},
	"gpt-4":                {Family: FamilyChat, TokenLimitParam: ParamMaxTokens},
	"gpt-4-turbo":          {Family: FamilyChat, TokenLimitParam: ParamMaxCompletionTokens},
	"gpt-4-turbo-preview":  {Family: FamilyChat, TokenLimitParam: ParamMaxCompletionTokens},
	"gpt-4-vision-preview": {Family: FamilyChat, TokenLimitParam: ParamMaxTokens, SupportsVision: true},
	"gpt-4o":               {Family: FamilyChat, TokenLimitParam: ParamMaxCompletionTokens, SupportsVision: true, TemperatureLocked: true},
	"gpt-4o-mini":          {Family: FamilyChat, TokenLimitParam: ParamMaxCompletionTokens, SupportsVision: true, TemperatureLocked: true},
	"gpt-5":                {Family: FamilyResponses, TokenLimitParam: ParamMaxCompletionTokens, TemperatureLocked: true},
	"gpt-5-mini":           {Family: FamilyResponses, TokenLimitParam: ParamMaxCompletionTokens, TemperatureLocked: true},
	"gpt-5-nano":           {Family: FamilyResponses, TokenLimitParam: ParamMaxCompletionTokens, TemperatureLocked: true},
}

// ProfileFor resolves the capability profile for a model identifier.
// Unknown models get the most conservative profile: chat family, classic
// token parameter, temperature allowed, no vision.
func ProfileFor(model string) ModelProfile {
	if p, ok := modelProfiles[model]; ok {
		return p
	}
	return ModelProfile{Family: FamilyChat, TokenLimitParam: ParamMaxTokens}
}
