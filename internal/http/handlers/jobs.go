package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blocksmith/internal/domain"
)

type jobRequest struct {
	JobID string `json:"job_id"`
}

// JobStatus handles GET /v1/job?job_id=... — a pure read with no side
// effects.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("job_id")
	if id == "" {
		a.error(w, r, http.StatusBadRequest, domain.CodeBadRequest, "job_id is required")
		return
	}
	job, ok := a.Runner.Poll(id)
	if !ok {
		a.error(w, r, http.StatusNotFound, domain.CodeNotFound, "job not found or expired")
		return
	}
	a.json(w, http.StatusOK, jobPayload(job))
}

// JobsList handles GET /v1/jobs — every live job record, newest first.
func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	list := a.Runner.List()
	items := make([]map[string]any, 0, len(list))
	for _, job := range list {
		items = append(items, jobPayload(job))
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

// JobCancel handles POST /v1/job/cancel. Canceling a terminal job is
// rejected; the record is immutable until it expires.
func (a *App) JobCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := a.decodeJobID(w, r)
	if !ok {
		return
	}
	job, err := a.Runner.Cancel(id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, domain.CodeNotFound, "job not found or expired")
		return
	case errors.Is(err, domain.ErrJobTerminal):
		a.error(w, r, http.StatusConflict, domain.CodeBadRequest, "job already finished: "+string(job.Status))
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "status": job.Status})
}

// JobDelete handles POST /v1/job/delete — purges both store keys
// unconditionally.
func (a *App) JobDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.decodeJobID(w, r)
	if !ok {
		return
	}
	a.Runner.Delete(id)
	a.json(w, http.StatusOK, map[string]any{"success": true, "deleted": true})
}

// JobRun handles POST /v1/job/run — the operational escape hatch that
// forces synchronous execution of a queued job when background workers
// are not keeping up.
func (a *App) JobRun(w http.ResponseWriter, r *http.Request) {
	id, ok := a.decodeJobID(w, r)
	if !ok {
		return
	}
	job, found := a.Runner.Run(r.Context(), id)
	if !found {
		a.error(w, r, http.StatusNotFound, domain.CodeNotFound, "job not found or expired")
		return
	}
	a.json(w, http.StatusOK, jobPayload(job))
}

func (a *App) decodeJobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		a.error(w, r, http.StatusBadRequest, domain.CodeBadRequest, "job_id is required")
		return "", false
	}
	return req.JobID, true
}

func jobPayload(job domain.Job) map[string]any {
	payload := map[string]any{
		"success":    true,
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}
	if !job.FinishedAt.IsZero() {
		payload["finished_at"] = job.FinishedAt
	}
	if job.Result != nil {
		payload["result"] = job.Result
	}
	return payload
}
