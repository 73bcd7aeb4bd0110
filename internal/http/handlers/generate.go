package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"blocksmith/internal/domain"
)

type generateRequest struct {
	Prompt string            `json:"prompt"`
	Images []domain.ImageRef `json:"images"`
	Async  *bool             `json:"async"`
}

// Generate handles POST /v1/generate. Async mode (the default) enqueues a
// job and returns its id immediately; sync mode holds the request open
// for the whole provider call and returns the final markup.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.CodeBadRequest, "invalid JSON payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, r, http.StatusBadRequest, domain.CodeBadRequest, "prompt is required")
		return
	}

	async := true
	if req.Async != nil {
		async = *req.Async
	}
	genReq := domain.GenerationRequest{Prompt: req.Prompt, Images: req.Images, Async: async}

	if async {
		id := a.Runner.Enqueue(genReq)
		a.json(w, http.StatusAccepted, map[string]any{
			"success": true,
			"async":   true,
			"job_id":  id,
		})
		return
	}

	result := a.Service.Generate(r.Context(), genReq)
	if !result.Success {
		a.error(w, r, statusForCode(result.ErrorCode), result.ErrorCode, result.ErrorMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":    true,
		"code":       result.Code,
		"usage":      result.Usage,
		"model_used": result.ModelUsed,
		"api":        result.APIFamily,
	})
}

func statusForCode(code string) int {
	switch code {
	case domain.CodeNoAPIKey, domain.CodeBadRequest:
		return http.StatusBadRequest
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeQuotaExceeded:
		return http.StatusPaymentRequired
	case domain.CodeModelUnavailable, domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConnectionFailed:
		return http.StatusBadGateway
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
