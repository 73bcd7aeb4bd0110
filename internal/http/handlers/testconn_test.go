package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTestConnectionSuccess(t *testing.T) {
	t.Parallel()
	var wireBody string
	app := newTestApp(func(r *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(r.Body)
		wireBody = string(raw)
		return jsonResponse(http.StatusOK, okChatBody), nil
	})
	rec := httptest.NewRecorder()
	app.TestConnection(rec, postJSON("/v1/test-connection", `{}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["message"] != "Connection successful!" {
		t.Fatalf("body = %v", body)
	}
	// The probe is deliberately tiny.
	if !strings.Contains(wireBody, `"max_tokens":20`) {
		t.Fatalf("wire body = %s", wireBody)
	}
}

func TestTestConnectionOverridesModel(t *testing.T) {
	t.Parallel()
	var wireBody string
	app := newTestApp(func(r *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(r.Body)
		wireBody = string(raw)
		return jsonResponse(http.StatusOK, okChatBody), nil
	})
	rec := httptest.NewRecorder()
	app.TestConnection(rec, postJSON("/v1/test-connection", `{"model":"gpt-4o-mini"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(wireBody, `"model":"gpt-4o-mini"`) {
		t.Fatalf("wire body = %s", wireBody)
	}
}

func TestTestConnectionBadKey(t *testing.T) {
	t.Parallel()
	app := newTestApp(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`), nil
	})
	rec := httptest.NewRecorder()
	app.TestConnection(rec, postJSON("/v1/test-connection", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error_code"] != "no_api_key" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}

func TestTestConnectionNoKeyConfigured(t *testing.T) {
	t.Parallel()
	app := newTestApp(func(*http.Request) (*http.Response, error) {
		t.Error("provider called without an api key")
		return nil, nil
	})
	app.Config.OpenAIAPIKey = ""
	rec := httptest.NewRecorder()
	app.TestConnection(rec, postJSON("/v1/test-connection", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error_code"] != "no_api_key" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}
