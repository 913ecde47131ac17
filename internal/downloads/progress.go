package downloads

import (
	"fmt"
	"sync"
	"time"
)

// errorRingSize bounds the number of recent errors surfaced in a snapshot.
const errorRingSize = 10

// FileResult is one entry of the per-batch audit log, in completion order.
type FileResult struct {
	Filename  string    `json:"filename"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchStatus is a point-in-time snapshot of a download batch.
type BatchStatus struct {
	SessionID         string       `json:"session_id"`
	TotalFiles        int          `json:"total_files"`
	CompletedFiles    int          `json:"completed_files"`
	FailedFiles       int          `json:"failed_files"`
	DuplicatesSkipped int          `json:"duplicates_skipped"`
	CurrentFile       string       `json:"current_file"`
	CurrentProgress   float64      `json:"current_progress"`
	OverallProgress   float64      `json:"overall_progress"`
	ElapsedSeconds    float64      `json:"elapsed_time"`
	Errors            []string     `json:"errors"`
	FilesProcessed    []FileResult `json:"files_processed"`
	IsComplete        bool         `json:"is_complete"`

	// Set only on the final snapshot of a batch.
	FinalSuccessful int `json:"final_successful,omitempty"`
	FinalFailed     int `json:"final_failed,omitempty"`
	TotalProcessed  int `json:"total_processed,omitempty"`
}

// Sink receives status snapshots. It is called outside the tracker's lock
// but should still return quickly; the polling surface reads Snapshot
// directly and does not depend on the sink.
type Sink func(BatchStatus)

// Tracker is the single shared mutable structure of a batch. All fetches
// report through its methods; raw field access is not exposed.
type Tracker struct {
	mu sync.Mutex

	sessionID string
	total     int
	completed int
	failed    int
	skipped   int

	currentFile string
	currentPct  float64

	startTime time.Time
	errors    []string
	processed []FileResult

	sink Sink
}

func NewTracker(sink Sink) *Tracker {
	return &Tracker{sink: sink, startTime: time.Now()}
}

// Start resets the tracker for a fresh batch.
func (t *Tracker) Start(sessionID string, totalFiles int) {
	t.mu.Lock()
	t.sessionID = sessionID
	t.total = totalFiles
	t.completed = 0
	t.failed = 0
	t.skipped = 0
	t.currentFile = ""
	t.currentPct = 0
	t.startTime = time.Now()
	t.errors = nil
	t.processed = nil
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(s)
}

// BeginItem marks a file as the one currently being processed.
func (t *Tracker) BeginItem(name string) {
	t.mu.Lock()
	t.currentFile = name
	t.currentPct = 0
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(s)
}

// AdvanceItem updates the current item's progress without touching counts.
func (t *Tracker) AdvanceItem(name string, pct float64) {
	t.mu.Lock()
	t.currentFile = name
	t.currentPct = pct
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(s)
}

// CompleteItem records a terminal success or failure for one file.
func (t *Tracker) CompleteItem(name string, success bool, errMsg string) {
	t.mu.Lock()
	if success {
		t.completed++
	} else {
		t.failed++
		if errMsg != "" {
			t.errors = append(t.errors, fmt.Sprintf("%s: %s", name, errMsg))
		}
	}
	t.processed = append(t.processed, FileResult{
		Filename:  name,
		Success:   success,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	})
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(s)
}

// SkipDuplicate records a file skipped because identical content already
// exists. Counted separately from successes and failures, audited as a
// successful no-op.
func (t *Tracker) SkipDuplicate(name string) {
	t.mu.Lock()
	t.skipped++
	t.processed = append(t.processed, FileResult{
		Filename:  name,
		Success:   true,
		Error:     "Skipped - duplicate",
		Timestamp: time.Now().UTC(),
	})
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(s)
}

// Snapshot returns a copy of the current state. Safe from any goroutine.
func (t *Tracker) Snapshot() BatchStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() BatchStatus {
	processed := t.completed + t.failed + t.skipped

	overall := 0.0
	if t.total > 0 {
		overall = float64(processed) / float64(t.total) * 100
	}

	errs := t.errors
	if len(errs) > errorRingSize {
		errs = errs[len(errs)-errorRingSize:]
	}
	errsCopy := make([]string, len(errs))
	copy(errsCopy, errs)

	audit := make([]FileResult, len(t.processed))
	copy(audit, t.processed)

	return BatchStatus{
		SessionID:         t.sessionID,
		TotalFiles:        t.total,
		CompletedFiles:    t.completed,
		FailedFiles:       t.failed,
		DuplicatesSkipped: t.skipped,
		CurrentFile:       t.currentFile,
		CurrentProgress:   t.currentPct,
		OverallProgress:   overall,
		ElapsedSeconds:    time.Since(t.startTime).Seconds(),
		Errors:            errsCopy,
		FilesProcessed:    audit,
		IsComplete:        processed >= t.total,
	}
}

func (t *Tracker) publish(s BatchStatus) {
	if t.sink != nil {
		t.sink(s)
	}
}
