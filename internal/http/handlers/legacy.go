package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"blocksmith/internal/domain"
)

// LegacyGenerate is the form-encoded fallback for hosts where the JSON
// endpoint is unavailable. It accepts `prompt` and a JSON-encoded
// `images` form field, always runs synchronously, and wraps the result in
// the legacy `{success, data}` envelope.
func (a *App) LegacyGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.legacyError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	promptText := strings.TrimSpace(r.PostFormValue("prompt"))
	if promptText == "" {
		a.legacyError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	var images []domain.ImageRef
	if raw := r.PostFormValue("images"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &images); err != nil {
			// Malformed image metadata degrades to a text-only request.
			images = nil
		}
	}

	result := a.Service.Generate(r.Context(), domain.GenerationRequest{
		Prompt: promptText,
		Images: images,
	})
	if !result.Success {
		a.legacyError(w, statusForCode(result.ErrorCode), result.ErrorMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"success":    true,
			"code":       result.Code,
			"usage":      result.Usage,
			"model_used": result.ModelUsed,
			"api":        result.APIFamily,
		},
	})
}

func (a *App) legacyError(w http.ResponseWriter, status int, message string) {
	a.json(w, status, map[string]any{"success": false, "data": message})
}
