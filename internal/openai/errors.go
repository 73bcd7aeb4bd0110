package openai

import (
	"net/http"
	"strings"

	"blocksmith/internal/domain"
)

// ClassifyError maps a non-200 provider response onto one of the stable
// error codes. Classification is by message content first, status second,
// because the provider reports most conditions as a 4xx with a prose
// message.
func ClassifyError(status int, message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "rate limit"), status == http.StatusTooManyRequests:
		return domain.CodeRateLimited
	case strings.Contains(lower, "quota"), strings.Contains(lower, "billing"):
		return domain.CodeQuotaExceeded
	case strings.Contains(lower, "api key"), status == http.StatusUnauthorized:
		return domain.CodeNoAPIKey
	case modelUnavailable(lower, status):
		return domain.CodeModelUnavailable
	}
	return domain.CodeProviderError
}

func modelUnavailable(lower string, status int) bool {
	if !strings.Contains(lower, "model") {
		return status == http.StatusNotFound
	}
	return strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "no access") ||
		strings.Contains(lower, "deprecated")
}
