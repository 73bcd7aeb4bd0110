package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blocksmith/internal/generate"
	"blocksmith/internal/http/handlers"
	"blocksmith/internal/images"
	"blocksmith/internal/infra"
	"blocksmith/internal/jobs"
	"blocksmith/internal/openai"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestRouter(authToken string, rt roundTripFunc) http.Handler {
	cfg := &infra.Config{
		OpenAIAPIKey:  "sk-test",
		Model:         "gpt-4",
		APIMode:       "auto",
		MaxTokens:     100,
		Temperature:   0.7,
		JobTTL:        time.Minute,
		AuthToken:     authToken,
		DefaultLocale: "en",
	}
	logger := zerolog.Nop()
	client := openai.NewClient(openai.Options{
		APIKey:     cfg.OpenAIAPIKey,
		HTTPClient: &http.Client{Transport: rt},
	})
	service := generate.NewService(cfg, client, images.NewResolver("", "", logger), logger)
	runner := jobs.NewRunner(jobs.NewStore(cfg.JobTTL), service.Generate, logger)
	return NewRouter(handlers.NewApp(cfg, service, runner, logger))
}

func okTransport(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"content":"<p>ok</p>"}}]}`)),
	}, nil
}

func TestHealthIsOpen(t *testing.T) {
	t.Parallel()
	router := newTestRouter("secret", okTransport)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateRequiresAuth(t *testing.T) {
	t.Parallel()
	router := newTestRouter("secret", okTransport)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"p"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"p"}`))
	req.Header.Set("X-Auth-Token", "secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
}

func TestRouterEndToEndAsync(t *testing.T) {
	t.Parallel()
	router := newTestRouter("", okTransport)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":"p"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	body := rec.Body.String()
	start := strings.Index(body, `"job_id":"`)
	if start < 0 {
		t.Fatalf("body = %s", body)
	}
	rest := body[start+len(`"job_id":"`):]
	jobID := rest[:strings.Index(rest, `"`)]

	req = httptest.NewRequest(http.MethodPost, "/v1/job/run", strings.NewReader(`{"job_id":"`+jobID+`"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"done"`) {
		t.Fatalf("run body = %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/job?job_id="+jobID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("poll status = %d, want 200", rec.Code)
	}
}
