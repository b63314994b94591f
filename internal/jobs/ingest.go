// Package jobs contains the background ingestion runner that owns all index
// writes while the server is running.
package jobs

import (
	"context"
	"log"
	"sync"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/source"
	"github.com/campuskit/virtualta/internal/telemetry"
)

// State describes the index lifecycle as seen by status endpoints.
type State string

const (
	StateNotLoaded State = "not_loaded"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// Ingestor is the index write surface the runner drives.
type Ingestor interface {
	Ingest(ctx context.Context, docs []domain.Document) (int, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// SnapshotArchiver uploads the source snapshot after a successful ingestion.
type SnapshotArchiver interface {
	Archive(ctx context.Context, snapshotPath string) error
}

type request struct {
	clearFirst bool
	done       chan error
}

// IngestRunner serializes index writes through a single goroutine. HTTP
// handlers and CLI commands enqueue requests; only the runner touches the
// ingestor's write path, so concurrent reingestion triggers cannot overlap.
type IngestRunner struct {
	ingestor     Ingestor
	src          source.Source
	archiver     SnapshotArchiver
	snapshotPath string

	requests chan request
	stopChan chan struct{}
	doneChan chan struct{}

	mu        sync.RWMutex
	state     State
	lastErr   error
	lastCount int
}

// NewIngestRunner creates a new IngestRunner. The archiver may be nil when
// snapshot archiving is not configured.
func NewIngestRunner(ingestor Ingestor, src source.Source, archiver SnapshotArchiver, snapshotPath string) *IngestRunner {
	return &IngestRunner{
		ingestor:     ingestor,
		src:          src,
		archiver:     archiver,
		snapshotPath: snapshotPath,
		requests:     make(chan request, 1),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the runner's request loop. Run it in its own goroutine.
func (r *IngestRunner) Start(ctx context.Context) {
	defer close(r.doneChan)

	log.Println("ingest runner started")

	for {
		select {
		case <-ctx.Done():
			log.Println("ingest runner stopped: context cancelled")
			return
		case <-r.stopChan:
			log.Println("ingest runner stopped: stop signal received")
			return
		case req := <-r.requests:
			err := r.run(ctx, req.clearFirst)
			if req.done != nil {
				req.done <- err
				close(req.done)
			}
		}
	}
}

// Stop gracefully stops the runner and waits for the loop to exit.
func (r *IngestRunner) Stop() {
	close(r.stopChan)
	<-r.doneChan
	log.Println("ingest runner shutdown complete")
}

// Trigger enqueues an ingestion without waiting for it. Returns
// ErrIngestionInProgress when a request is already queued or running.
func (r *IngestRunner) Trigger(clearFirst bool) error {
	select {
	case r.requests <- request{clearFirst: clearFirst}:
		return nil
	default:
		return domain.ErrIngestionInProgress
	}
}

// TriggerAndWait enqueues an ingestion and blocks until it completes.
func (r *IngestRunner) TriggerAndWait(ctx context.Context, clearFirst bool) error {
	done := make(chan error, 1)
	select {
	case r.requests <- request{clearFirst: clearFirst, done: done}:
	default:
		return domain.ErrIngestionInProgress
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnsureLoaded triggers an initial ingestion when the index is empty.
// Called once at startup; an already-populated index is left alone.
func (r *IngestRunner) EnsureLoaded(ctx context.Context) error {
	count, err := r.ingestor.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		r.setState(StateReady, nil, int(count))
		log.Printf("ingest runner: index already loaded (%d documents)", count)
		return nil
	}
	return r.Trigger(false)
}

// Status reports the current lifecycle state and the last ingestion error.
func (r *IngestRunner) Status() (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.lastErr
}

// DataLoaded reports whether the index reached the ready state.
func (r *IngestRunner) DataLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == StateReady
}

func (r *IngestRunner) setState(state State, err error, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	r.lastErr = err
	if count >= 0 {
		r.lastCount = count
	}
}

func (r *IngestRunner) run(ctx context.Context, clearFirst bool) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestRunner.run", telemetry.SpanAttributes{
		Operation: "background_ingest",
	})
	defer span.End()

	r.setState(StateLoading, nil, -1)

	if clearFirst {
		if err := r.ingestor.Clear(ctx); err != nil {
			log.Printf("ingest runner: clear failed: %v", err)
			telemetry.CaptureError(ctx, err)
			r.setState(StateFailed, err, -1)
			return err
		}
	}

	docs, err := r.src.Fetch(ctx)
	if err != nil {
		log.Printf("ingest runner: source fetch failed: %v", err)
		telemetry.CaptureError(ctx, err)
		r.setState(StateFailed, err, -1)
		return err
	}

	inserted, err := r.ingestor.Ingest(ctx, docs)
	if err != nil {
		log.Printf("ingest runner: ingestion failed: %v", err)
		telemetry.CaptureError(ctx, err)
		r.setState(StateFailed, err, -1)
		return err
	}

	r.setState(StateReady, nil, inserted)
	log.Printf("ingest runner: ingestion complete (%d documents)", inserted)

	if r.archiver != nil && r.snapshotPath != "" {
		if err := r.archiver.Archive(ctx, r.snapshotPath); err != nil {
			// Archiving is provenance, not correctness. Never fail the run.
			log.Printf("ingest runner: snapshot archive failed: %v", err)
			telemetry.CaptureError(ctx, err)
		}
	}

	return nil
}
