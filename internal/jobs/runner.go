package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blocksmith/internal/domain"
	"blocksmith/internal/infra"
)

// GenerateFunc executes one generation synchronously and returns its
// terminal result. Failures are reported inside the result, never as a
// panic or error that could crash the worker.
type GenerateFunc func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult

// Runner drives the job state machine: queued → processing → one of
// done/canceled/error. Dispatch is a single buffered channel consumed by
// worker goroutines, so a job is normally executed exactly once; the
// transitions still take a per-job lock because the manual-run endpoint
// can race the worker on the same id, and a duplicate invocation must be
// a no-op rather than a second provider call.
type Runner struct {
	store    *Store
	generate GenerateFunc
	logger   infra.Logger
	queue    chan string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner wires a runner over the given store and generation function.
func NewRunner(store *Store, generate GenerateFunc, logger infra.Logger) *Runner {
	return &Runner{
		store:    store,
		generate: generate,
		logger:   logger,
		queue:    make(chan string, 64),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Start launches the worker goroutines. They drain the queue until the
// context is canceled.
func (r *Runner) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-r.queue:
					r.Run(ctx, id)
				}
			}
		}()
	}
}

// Enqueue records a new queued job, stores its payload, and hands the id
// to the dispatch queue. It returns immediately; the caller polls for
// completion.
func (r *Runner) Enqueue(req domain.GenerationRequest) string {
	id := uuid.NewString()
	job := domain.Job{
		ID:        id,
		Status:    domain.JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	r.store.PutPayload(id, req)
	r.store.PutStatus(job)
	r.logger.Info().Str("job_id", id).Msg("jobs: enqueued")

	select {
	case r.queue <- id:
	default:
		// Queue full. The job stays queued; the manual-run endpoint is
		// the operator's escape hatch, matching the behavior of a
		// blocked background trigger.
		r.logger.Warn().Str("job_id", id).Msg("jobs: dispatch queue full, job stays queued")
	}
	return id
}

// Run executes a queued job synchronously. Re-invocation on a job that is
// already processing or terminal is a no-op and returns the current
// record. The canceled status is observed before any provider contact.
func (r *Runner) Run(ctx context.Context, id string) (domain.Job, bool) {
	lock := r.jobLock(id)

	lock.Lock()
	job, ok := r.store.Status(id)
	if !ok {
		lock.Unlock()
		return domain.Job{}, false
	}
	if job.Status != domain.JobStatusQueued {
		lock.Unlock()
		return job, true
	}
	payload, ok := r.store.Payload(id)
	if !ok {
		job = r.finishLocked(job, failedResult("payload expired before execution"))
		lock.Unlock()
		return job, true
	}
	job.Status = domain.JobStatusProcessing
	r.store.PutStatus(job)
	lock.Unlock()

	r.logger.Info().Str("job_id", id).Msg("jobs: processing")
	result := r.generate(ctx, payload)

	lock.Lock()
	defer lock.Unlock()
	current, ok := r.store.Status(id)
	if ok && current.Status == domain.JobStatusCanceled {
		// Canceled mid-flight: the cancel already purged the payload and
		// the record stays canceled. The computed result is discarded.
		return current, true
	}
	if ok {
		job = current
	}
	job = r.finishLocked(job, result)
	return job, true
}

// finishLocked writes the terminal transition. Caller holds the job lock.
func (r *Runner) finishLocked(job domain.Job, result domain.GenerationResult) domain.Job {
	job.FinishedAt = time.Now().UTC()
	job.Result = &result
	if result.Success {
		job.Status = domain.JobStatusDone
	} else {
		job.Status = domain.JobStatusError
	}
	r.store.PutStatus(job)
	r.store.DeletePayload(job.ID)
	r.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Str("error_code", result.ErrorCode).
		Msg("jobs: finished")
	return job
}

// Poll reads the current status record without side effects.
func (r *Runner) Poll(id string) (domain.Job, bool) {
	return r.store.Status(id)
}

// Cancel transitions a non-terminal job to canceled and purges its
// payload. Canceling a terminal job is rejected; the record is immutable
// until it expires.
func (r *Runner) Cancel(id string) (domain.Job, error) {
	lock := r.jobLock(id)
	lock.Lock()
	defer lock.Unlock()

	job, ok := r.store.Status(id)
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	if job.Status.Terminal() {
		return job, domain.ErrJobTerminal
	}
	job.Status = domain.JobStatusCanceled
	job.FinishedAt = time.Now().UTC()
	r.store.PutStatus(job)
	r.store.DeletePayload(id)
	r.logger.Info().Str("job_id", id).Msg("jobs: canceled")
	return job, nil
}

// Delete purges both keys unconditionally.
func (r *Runner) Delete(id string) {
	r.store.Delete(id)
	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
}

// List returns all live job records.
func (r *Runner) List() []domain.Job {
	return r.store.List()
}

func (r *Runner) jobLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		if len(r.locks) > 1024 {
			r.pruneLocksLocked()
		}
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

// pruneLocksLocked drops lock entries whose job record has expired.
// Caller holds r.mu.
func (r *Runner) pruneLocksLocked() {
	for id := range r.locks {
		if _, ok := r.store.Status(id); !ok {
			delete(r.locks, id)
		}
	}
}

func failedResult(message string) domain.GenerationResult {
	return domain.GenerationResult{
		Success:      false,
		ErrorCode:    domain.CodeProviderError,
		ErrorMessage: message,
	}
}
