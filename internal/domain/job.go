package domain

import "time"

// JobStatus enumerates the job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusCanceled   JobStatus = "canceled"
	JobStatusError      JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusDone, JobStatusCanceled, JobStatusError:
		return true
	}
	return false
}

// Job is the mutable status record for one queued generation. The request
// payload lives under a separate store key so it can be purged as soon as
// the job reaches a terminal state; the record itself expires on the
// store TTL regardless of status.
type Job struct {
	ID         string            `json:"id"`
	Status     JobStatus         `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt time.Time         `json:"finished_at,omitempty"`
	Result     *GenerationResult `json:"result,omitempty"`
}
