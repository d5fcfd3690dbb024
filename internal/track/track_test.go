package track

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := New()

	patternID, jobID := tr.Snapshot()
	assert.Empty(t, patternID)
	assert.Empty(t, jobID)

	tr.SetPattern("pattern-3")
	tr.SetJob("job-1")
	patternID, jobID = tr.Snapshot()
	assert.Equal(t, "pattern-3", patternID)
	assert.Equal(t, "job-1", jobID)

	tr.ClearJob()
	patternID, jobID = tr.Snapshot()
	assert.Equal(t, "pattern-3", patternID)
	assert.Empty(t, jobID)

	tr.Clear()
	patternID, jobID = tr.Snapshot()
	assert.Empty(t, patternID)
	assert.Empty(t, jobID)
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.SetPattern("pattern-1")
			tr.SetJob("job-1")
		}()
		go func() {
			defer wg.Done()
			tr.Snapshot()
		}()
	}
	wg.Wait()

	patternID, jobID := tr.Snapshot()
	assert.Equal(t, "pattern-1", patternID)
	assert.Equal(t, "job-1", jobID)
}
