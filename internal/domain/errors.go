package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyPrompt   = errors.New("prompt is required")
	ErrNoAPIKey      = errors.New("api key is not configured")
	ErrJobTerminal   = errors.New("job already finished")
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Stable error codes surfaced to callers. The provider-error codes are
// assigned by message classification, never retried automatically.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeNoAPIKey         = "no_api_key"
	CodeConnectionFailed = "api_error"
	CodeRateLimited      = "rate_limited"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeModelUnavailable = "model_unavailable"
	CodeProviderError    = "openai_error"
	CodeEmptyResponse    = "empty_response"
)
