// Package jobs holds the asynchronous side of generation: a TTL-bounded
// key/value store for job records and the runner that drives the job
// state machine.
package jobs

import (
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"blocksmith/internal/domain"
)

const (
	statusKeyPrefix  = "job:"
	payloadKeyPrefix = "payload:"
)

// Store keeps two independently keyed records per job: the mutable
// status/result record and the write-once request payload. The payload is
// purged as soon as the job reaches a terminal state; the status record
// lives until the TTL expires it. An expired record is indistinguishable
// from a deleted one.
type Store struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewStore creates a store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		c:   cache.New(ttl, ttl/2),
		ttl: ttl,
	}
}

// PutStatus upserts the status record. The record keeps its original TTL
// window only in the sense that every write restarts it; retention is
// bounded either way.
func (s *Store) PutStatus(job domain.Job) {
	s.c.Set(statusKeyPrefix+job.ID, job, cache.DefaultExpiration)
}

// Status returns the current status record, absent once expired.
func (s *Store) Status(id string) (domain.Job, bool) {
	v, ok := s.c.Get(statusKeyPrefix + id)
	if !ok {
		return domain.Job{}, false
	}
	job, ok := v.(domain.Job)
	return job, ok
}

// PutPayload stores the request payload under its own key.
func (s *Store) PutPayload(id string, req domain.GenerationRequest) {
	s.c.Set(payloadKeyPrefix+id, req, cache.DefaultExpiration)
}

// Payload returns the stored request payload.
func (s *Store) Payload(id string) (domain.GenerationRequest, bool) {
	v, ok := s.c.Get(payloadKeyPrefix + id)
	if !ok {
		return domain.GenerationRequest{}, false
	}
	req, ok := v.(domain.GenerationRequest)
	return req, ok
}

// DeletePayload purges the payload early; the status record stays.
func (s *Store) DeletePayload(id string) {
	s.c.Delete(payloadKeyPrefix + id)
}

// Delete purges both keys unconditionally.
func (s *Store) Delete(id string) {
	s.c.Delete(statusKeyPrefix + id)
	s.c.Delete(payloadKeyPrefix + id)
}

// List returns every live status record, newest first.
func (s *Store) List() []domain.Job {
	var out []domain.Job
	for key, item := range s.c.Items() {
		if !strings.HasPrefix(key, statusKeyPrefix) {
			continue
		}
		if job, ok := item.Object.(domain.Job); ok {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
