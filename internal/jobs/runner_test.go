package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blocksmith/internal/domain"
)

func testRunner(t *testing.T, generate GenerateFunc) (*Runner, *Store) {
	t.Helper()
	store := NewStore(time.Minute)
	return NewRunner(store, generate, zerolog.Nop()), store
}

func okResult() domain.GenerationResult {
	return domain.GenerationResult{Success: true, Code: "<!-- wp:paragraph --><p>ok</p><!-- /wp:paragraph -->"}
}

func TestEnqueueRunPoll(t *testing.T) {
	t.Parallel()
	var calls int32
	runner, store := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		atomic.AddInt32(&calls, 1)
		if req.Prompt != "build a hero section" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		return okResult()
	})

	id := runner.Enqueue(domain.GenerationRequest{Prompt: "build a hero section"})
	job, ok := runner.Poll(id)
	if !ok || job.Status != domain.JobStatusQueued {
		t.Fatalf("after enqueue: job = %+v, ok = %v", job, ok)
	}
	if _, ok := store.Payload(id); !ok {
		t.Fatal("payload missing after enqueue")
	}

	job, ok = runner.Run(context.Background(), id)
	if !ok {
		t.Fatal("Run reported missing job")
	}
	if job.Status != domain.JobStatusDone {
		t.Fatalf("status = %q, want %q", job.Status, domain.JobStatusDone)
	}
	if job.Result == nil || !job.Result.Success {
		t.Fatalf("result = %+v", job.Result)
	}
	if job.FinishedAt.IsZero() {
		t.Fatal("FinishedAt not set")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("generate calls = %d, want 1", got)
	}
	// Payload is purged at the terminal transition; only the status
	// record survives.
	if _, ok := store.Payload(id); ok {
		t.Fatal("payload still present after completion")
	}
	if _, ok := runner.Poll(id); !ok {
		t.Fatal("status record gone after completion")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	var calls int32
	runner, _ := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		atomic.AddInt32(&calls, 1)
		return okResult()
	})
	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Run(context.Background(), id)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("generate calls = %d, want 1", got)
	}
	job, _ := runner.Poll(id)
	if job.Status != domain.JobStatusDone {
		t.Fatalf("status = %q, want %q", job.Status, domain.JobStatusDone)
	}
}

func TestCancelBeforeRunSkipsProvider(t *testing.T) {
	t.Parallel()
	var calls int32
	runner, store := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		atomic.AddInt32(&calls, 1)
		return okResult()
	})
	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})

	job, err := runner.Cancel(id)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if job.Status != domain.JobStatusCanceled {
		t.Fatalf("status = %q, want %q", job.Status, domain.JobStatusCanceled)
	}
	if _, ok := store.Payload(id); ok {
		t.Fatal("payload still present after cancel")
	}

	job, ok := runner.Run(context.Background(), id)
	if !ok || job.Status != domain.JobStatusCanceled {
		t.Fatalf("after run: job = %+v, ok = %v", job, ok)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("generate calls = %d, want 0", got)
	}
}

func TestCancelMidFlightKeepsCanceled(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	runner, _ := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		close(started)
		<-release
		return okResult()
	})
	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})

	done := make(chan domain.Job, 1)
	go func() {
		job, _ := runner.Run(context.Background(), id)
		done <- job
	}()

	<-started
	// The job lock is not held during the provider call, so cancel must
	// not block here.
	if _, err := runner.Cancel(id); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	close(release)

	job := <-done
	if job.Status != domain.JobStatusCanceled {
		t.Fatalf("status = %q, want %q", job.Status, domain.JobStatusCanceled)
	}
	if job.Result != nil {
		t.Fatalf("result kept after mid-flight cancel: %+v", job.Result)
	}
}

func TestCancelErrors(t *testing.T) {
	t.Parallel()
	runner, _ := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		return okResult()
	})

	if _, err := runner.Cancel("missing"); err != domain.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})
	runner.Run(context.Background(), id)
	if _, err := runner.Cancel(id); err != domain.ErrJobTerminal {
		t.Fatalf("err = %v, want ErrJobTerminal", err)
	}
}

func TestGenerationFailureMarksError(t *testing.T) {
	t.Parallel()
	runner, _ := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		return domain.GenerationResult{Success: false, ErrorCode: domain.CodeRateLimited, ErrorMessage: "slow down"}
	})
	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})
	job, _ := runner.Run(context.Background(), id)
	if job.Status != domain.JobStatusError {
		t.Fatalf("status = %q, want %q", job.Status, domain.JobStatusError)
	}
	if job.Result == nil || job.Result.ErrorCode != domain.CodeRateLimited {
		t.Fatalf("result = %+v", job.Result)
	}
}

func TestRunMissingPayload(t *testing.T) {
	t.Parallel()
	var calls int32
	runner, store := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		atomic.AddInt32(&calls, 1)
		return okResult()
	})
	id := runner.Enqueue(domain.GenerationRequest{Prompt: "p"})
	store.DeletePayload(id)

	job, ok := runner.Run(context.Background(), id)
	if !ok || job.Status != domain.JobStatusError {
		t.Fatalf("job = %+v, ok = %v", job, ok)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("generate calls = %d, want 0", got)
	}
}

func TestWorkersDrainQueue(t *testing.T) {
	t.Parallel()
	var calls int32
	runner, _ := testRunner(t, func(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
		atomic.AddInt32(&calls, 1)
		return okResult()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx, 2)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, runner.Enqueue(domain.GenerationRequest{Prompt: "p"}))
	}

	deadline := time.After(5 * time.Second)
	for {
		doneAll := true
		for _, id := range ids {
			job, ok := runner.Poll(id)
			if !ok || !job.Status.Terminal() {
				doneAll = false
				break
			}
		}
		if doneAll {
			break
		}
		select {
		case <-deadline:
			t.Fatal("jobs did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := atomic.LoadInt32(&calls); got != 5 {
		t.Fatalf("generate calls = %d, want 5", got)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Minute)
	base := time.Now().UTC()
	store.PutStatus(domain.Job{ID: "a", Status: domain.JobStatusQueued, CreatedAt: base})
	store.PutStatus(domain.Job{ID: "b", Status: domain.JobStatusQueued, CreatedAt: base.Add(time.Second)})
	store.PutStatus(domain.Job{ID: "c", Status: domain.JobStatusQueued, CreatedAt: base.Add(2 * time.Second)})

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("order = [%s %s %s], want [c b a]", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestStoreDeleteRemovesBothKeys(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Minute)
	store.PutStatus(domain.Job{ID: "x", Status: domain.JobStatusQueued})
	store.PutPayload("x", domain.GenerationRequest{Prompt: "p"})
	store.Delete("x")
	if _, ok := store.Status("x"); ok {
		t.Fatal("status survived delete")
	}
	if _, ok := store.Payload("x"); ok {
		t.Fatal("payload survived delete")
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()
	store := NewStore(50 * time.Millisecond)
	store.PutStatus(domain.Job{ID: "x", Status: domain.JobStatusDone})
	time.Sleep(80 * time.Millisecond)
	if _, ok := store.Status("x"); ok {
		t.Fatal("status survived past ttl")
	}
}
