package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blocksmith/internal/domain"
	"blocksmith/internal/generate"
)

type testConnectionRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// TestConnection handles POST /v1/test-connection: a minimal chat request
// that validates an API key and model pairing before the operator saves
// them.
func (a *App) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.CodeBadRequest, "invalid JSON payload")
		return
	}
	err := a.Service.TestConnection(r.Context(), req.APIKey, req.Model)
	if err == nil {
		a.json(w, http.StatusOK, map[string]any{"success": true, "message": "Connection successful!"})
		return
	}
	if errors.Is(err, domain.ErrNoAPIKey) {
		a.error(w, r, http.StatusBadRequest, domain.CodeNoAPIKey, "API key is required")
		return
	}
	var providerErr *generate.ProviderError
	if errors.As(err, &providerErr) {
		a.error(w, r, statusForCode(providerErr.Code), providerErr.Code, providerErr.Message)
		return
	}
	a.error(w, r, http.StatusBadGateway, domain.CodeConnectionFailed, "Connection failed: "+err.Error())
}
