package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, true},
		// terminal states allow nothing, including a repeat confirm
		{StatusProcessed, StatusProcessed, false},
		{StatusProcessed, StatusPending, false},
		{StatusProcessed, StatusCancelled, false},
		{StatusCancelled, StatusProcessed, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusPending, false},
		// unknown statuses never transition
		{Status("BOGUS"), StatusProcessed, false},
		{StatusPending, Status("BOGUS"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
