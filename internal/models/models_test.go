package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want JobStatus
	}{
		{"successful", StatusSuccessful},
		{"SUCCESSFUL", StatusSuccessful},
		{" running ", StatusRunning},
		{"accepted", StatusAccepted},
		{"failed", StatusFailed},
		{"dismissed", StatusDismissed},
		{"paused", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseJobStatus(tc.raw))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusSuccessful.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())

	assert.False(t, StatusAccepted.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.False(t, StatusDismissed.IsTerminal())
	assert.False(t, StatusUnknown.IsTerminal(), "unknown statuses keep the monitor polling")
}

func TestPatternTypeOf(t *testing.T) {
	assert.Equal(t, TypeBasicProcessing, PatternTypeOf("pattern-1"))
	assert.Equal(t, TypeScatterGather, PatternTypeOf("pattern-4"))
	assert.Equal(t, TypeComplexParameters, PatternTypeOf("pattern-12"))
	assert.Equal(t, TypeBasicProcessing, PatternTypeOf("pattern-99"), "unknown patterns default to basic")
}

func TestKnownPatternIDs(t *testing.T) {
	ids := KnownPatternIDs()

	assert.Len(t, ids, 12)
	assert.Equal(t, "pattern-1", ids[0])
	assert.Equal(t, "pattern-12", ids[11], "numeric order, not lexical")
}
