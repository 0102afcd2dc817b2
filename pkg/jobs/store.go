// Package jobs implements the scan job store: one record per job id, with a
// single transition to a terminal state.
package jobs

import (
	"errors"
	"time"

	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// Status is the lifecycle state of a scan job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

var (
	// ErrUnknownJob is returned when a job id does not exist.
	ErrUnknownJob = errors.New("unknown job id")
	// ErrDuplicateJob is returned when creating a job id that already
	// exists. This indicates a bug in the id generator.
	ErrDuplicateJob = errors.New("duplicate job id")
	// ErrJobTerminal is returned when updating a job that already reached a
	// terminal state.
	ErrJobTerminal = errors.New("job already in terminal state")
)

// Record is the full state of one scan job.
type Record struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Findings  []types.Finding `json:"findings"`
	Error     string          `json:"error,omitempty"`
}

// Summary is the listing view of a job, without findings.
type Summary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the capability interface of the job store.
type Store interface {
	// Create registers a new job in queued state.
	Create(id, filename string) error
	// MarkRunning moves a queued job to running.
	MarkRunning(id string) error
	// Complete moves a job to done with its findings.
	Complete(id string, findings []types.Finding) error
	// Fail moves a job to failed with a human-readable error detail.
	Fail(id, detail string) error
	// Get returns the full record of a job.
	Get(id string) (Record, error)
	// List returns up to limit job summaries, most recent first.
	List(limit int) []Summary
}
