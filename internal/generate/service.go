// Package generate orchestrates one generation end to end: prompt
// composition, image resolution, request building, the provider call with
// its empty-output retry policy, and response normalization.
package generate

import (
	"context"
	"net/http"
	"strconv"

	"blocksmith/internal/domain"
	"blocksmith/internal/images"
	"blocksmith/internal/infra"
	"blocksmith/internal/normalize"
	"blocksmith/internal/openai"
	"blocksmith/internal/prompt"
)

// Empty-output anomaly policy: a 200 with a blank payload is retried with
// an identical request up to two more times, then surfaced with a bounded
// snapshot of the raw body for diagnostics.
const (
	maxAttempts     = 3
	rawSnapshotSize = 2000
)

// Service executes generations. It is stateless across calls; all
// configuration is captured at construction.
type Service struct {
	cfg      *infra.Config
	client   *openai.Client
	resolver *images.Resolver
	logger   infra.Logger
}

func NewService(cfg *infra.Config, client *openai.Client, resolver *images.Resolver, logger infra.Logger) *Service {
	return &Service{cfg: cfg, client: client, resolver: resolver, logger: logger}
}

// Generate runs the full pipeline and always returns a structured result;
// provider misbehavior is reported, never propagated as a panic or error.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
	if s.cfg.OpenAIAPIKey == "" {
		return failure(domain.CodeNoAPIKey, "OpenAI API key is not configured")
	}

	model := s.cfg.Model
	profile := openai.ProfileFor(model)
	composed := prompt.Compose(req, s.cfg.SystemPrompt, profile)
	s.logger.Debug().
		Str("model", model).
		Int("system_prompt_bytes", composed.Bytes).
		Str("system_prompt_preview", composed.Preview).
		Msg("generate: composed system prompt")

	build := openai.BuildInput{
		Model:                model,
		Profile:              profile,
		SystemPrompt:         composed.System,
		UserPrompt:           req.Prompt,
		ImageURLs:            s.resolver.ResolveAll(req.Images),
		APIMode:              s.cfg.APIMode,
		AllowResponsesImages: s.cfg.GPT5Images,
		Sampling: openai.Sampling{
			MaxTokens:        s.cfg.MaxTokens,
			Temperature:      s.cfg.Temperature,
			TopP:             s.cfg.TopP,
			PresencePenalty:  s.cfg.PresencePenalty,
			FrequencyPenalty: s.cfg.FrequencyPenalty,
			Stop:             s.cfg.StopSequences,
		},
	}
	body, family := openai.Build(build)

	var lastRaw []byte
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, raw, err := s.client.Do(ctx, family, body)
		if err != nil {
			s.logger.Error().Err(err).Str("model", model).Msg("generate: provider call failed")
			return failure(domain.CodeConnectionFailed, "Failed to connect to OpenAI API: "+err.Error())
		}
		if status != http.StatusOK {
			message := openai.ErrorMessage(raw)
			code := openai.ClassifyError(status, message)
			s.logger.Warn().
				Int("status", status).
				Str("error_code", code).
				Str("model", model).
				Msg("generate: provider error")
			return failure(code, "OpenAI API Error: "+message)
		}

		text, usage, ok := openai.ExtractText(family, raw)
		if ok {
			return domain.GenerationResult{
				Success:   true,
				Code:      normalize.Code(text),
				ModelUsed: model,
				APIFamily: string(family),
				Usage:     usage,
			}
		}
		lastRaw = raw
		s.logger.Warn().
			Int("attempt", attempt).
			Str("model", model).
			Msg("generate: empty provider response, retrying")
	}

	result := failure(domain.CodeEmptyResponse,
		"The model returned an empty response after "+strconv.Itoa(maxAttempts)+" attempts. Raw response: "+snapshot(lastRaw))
	result.ModelUsed = model
	result.APIFamily = string(family)
	return result
}

// TestConnection issues a minimal chat request to validate an API key and
// model pairing. Used by the settings screen's test button.
func (s *Service) TestConnection(ctx context.Context, apiKey, model string) error {
	if apiKey == "" {
		apiKey = s.cfg.OpenAIAPIKey
	}
	if model == "" {
		model = s.cfg.Model
	}
	if apiKey == "" {
		return domain.ErrNoAPIKey
	}
	client := s.client
	if apiKey != s.cfg.OpenAIAPIKey {
		client = openai.NewClient(openai.Options{
			APIKey:  apiKey,
			BaseURL: s.cfg.OpenAIBaseURL,
			Timeout: s.cfg.ProviderTimeout,
		})
	}
	profile := openai.ProfileFor(model)
	body, family := openai.Build(openai.BuildInput{
		Model:        model,
		Profile:      profile,
		SystemPrompt: "You are a connectivity probe.",
		UserPrompt:   `Say "Hello from blocksmith!"`,
		APIMode:      "chat",
		Sampling:     openai.Sampling{MaxTokens: 20, Temperature: s.cfg.Temperature, TopP: 1},
	})
	status, raw, err := client.Do(ctx, family, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &ProviderError{Code: openai.ClassifyError(status, openai.ErrorMessage(raw)), Message: openai.ErrorMessage(raw)}
	}
	return nil
}

// ProviderError carries a classified provider failure out of
// TestConnection.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

func failure(code, message string) domain.GenerationResult {
	return domain.GenerationResult{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func snapshot(raw []byte) string {
	s := string(raw)
	if len(s) > rawSnapshotSize {
		return s[:rawSnapshotSize]
	}
	return s
}
