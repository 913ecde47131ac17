package downloads

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const (
	minConcurrent = 1
	maxConcurrent = 10
)

// Options tunes one batch run. Zero values pick the defaults.
type Options struct {
	MaxConcurrent   int
	RequestInterval time.Duration
}

func (o Options) normalized() Options {
	if o.MaxConcurrent == 0 {
		o.MaxConcurrent = 5
	}
	if o.MaxConcurrent < minConcurrent {
		o.MaxConcurrent = minConcurrent
	}
	if o.MaxConcurrent > maxConcurrent {
		o.MaxConcurrent = maxConcurrent
	}
	if o.RequestInterval == 0 {
		o.RequestInterval = 100 * time.Millisecond
	}
	return o
}

// Orchestrator runs attachment batches with bounded concurrency and a
// shared request pacer. It is stateless between batches; each DownloadBatch
// call owns its own tracker and limiter.
type Orchestrator struct {
	resolver *files.Resolver
	store    MaterialStore
	log      *logger.Logger
}

func NewOrchestrator(resolver *files.Resolver, store MaterialStore, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		store:    store,
		log:      log.With("component", "orchestrator"),
	}
}

// NewSessionID returns a timestamped batch identifier, unique even for
// batches started within the same second.
func NewSessionID() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}

// DownloadBatch processes every attachment, isolating per-item failures:
// one bad attachment marks itself failed and the rest continue. The drive
// client is passed per batch so each run uses the current credentials. The
// returned status is the batch's final snapshot with totals filled in.
func (o *Orchestrator) DownloadBatch(ctx context.Context, drive DriveClient, attachments []domain.Attachment, opts Options, sink Sink) (*BatchStatus, error) {
	opts = opts.normalized()
	sessionID := NewSessionID()

	tracker := NewTracker(sink)
	tracker.Start(sessionID, len(attachments))

	pacer := NewRequestPacer(opts.RequestInterval)
	fetcher := NewFetcher(o.resolver, o.store, drive, pacer, tracker, o.log)

	o.log.Info("starting download batch",
		"session_id", sessionID,
		"attachments", len(attachments),
		"max_concurrent", opts.MaxConcurrent)

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrent))
	var successful, failed int64

	g := new(errgroup.Group)
	for _, att := range attachments {
		att := att
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				tracker.CompleteItem(att.DisplayName(), false, fmt.Sprintf("cancelled: %v", err))
				atomic.AddInt64(&failed, 1)
				return nil
			}
			defer sem.Release(1)

			if fetcher.Fetch(ctx, att) {
				atomic.AddInt64(&successful, 1)
			} else {
				atomic.AddInt64(&failed, 1)
			}
			return nil
		})
	}
	// Workers never propagate errors; Wait only joins them.
	_ = g.Wait()

	final := tracker.Snapshot()
	final.FinalSuccessful = int(atomic.LoadInt64(&successful))
	final.FinalFailed = int(atomic.LoadInt64(&failed))
	final.TotalProcessed = len(attachments)

	o.log.Info("download batch finished",
		"session_id", sessionID,
		"successful", final.FinalSuccessful,
		"failed", final.FinalFailed,
		"skipped", final.DuplicatesSkipped,
		"elapsed_seconds", final.ElapsedSeconds)

	if sink != nil {
		sink(final)
	}
	return &final, nil
}
