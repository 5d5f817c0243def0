package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceState_String(t *testing.T) {
	tests := []struct {
		state ServiceState
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{StateDegraded, "degraded"},
		{ServiceState(42), unknownDescription},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestQueryOutcome_OK(t *testing.T) {
	assert.True(t, QueryOutcome{Status: OutcomeOK}.OK())
	assert.False(t, QueryOutcome{Status: OutcomeNoResults}.OK())
	assert.False(t, QueryOutcome{Status: OutcomeUnavailable}.OK())
	assert.False(t, QueryOutcome{Status: OutcomeError}.OK())
}

func TestQueryStatus_Values(t *testing.T) {
	assert.Equal(t, QueryStatus("ok"), OutcomeOK)
	assert.Equal(t, QueryStatus("no_results"), OutcomeNoResults)
	assert.Equal(t, QueryStatus("unavailable"), OutcomeUnavailable)
	assert.Equal(t, QueryStatus("error"), OutcomeError)
}
