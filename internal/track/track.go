// Package track records which pattern and job are currently being worked on
// so an interrupt handler can tell the operator what may need manual cleanup.
//
// This is advisory bookkeeping, not a transactional guarantee: the handler
// cannot make blocking remote calls mid-signal, it can only report.
package track

import "sync"

// Tracker holds at most one active pattern/job pair. It is written by the
// orchestrator at phase boundaries and read from the signal-handling
// goroutine, hence the mutex.
type Tracker struct {
	mu        sync.Mutex
	patternID string
	jobID     string
}

func New() *Tracker {
	return &Tracker{}
}

// SetPattern marks a pattern as the in-flight unit of work.
func (t *Tracker) SetPattern(patternID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.patternID = patternID
}

// SetJob records the job created for the active pattern.
func (t *Tracker) SetJob(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobID = jobID
}

// ClearJob is called once monitoring has resolved the job.
func (t *Tracker) ClearJob() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobID = ""
}

// Clear resets both fields. Called when a pattern run finishes on any path.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.patternID = ""
	t.jobID = ""
}

// Snapshot returns the currently active pattern and job identifiers.
// Either or both may be empty.
func (t *Tracker) Snapshot() (patternID, jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.patternID, t.jobID
}
