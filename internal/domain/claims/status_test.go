package claims

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		status Status
		label  string
		order  int
	}{
		{StatusPendingSubmission, "Pending Submission", 0},
		{StatusSubmitted, "Submitted", 1},
		{StatusInReview, "In Review", 2},
		{StatusPendingVerification, "Pending Verification", 3},
		{StatusApproved, "Approved", 4},
		{StatusRejected, "Rejected", 4},
		{StatusSettled, "Settled", 5},
		{StatusWithdrawn, "Withdrawn", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			info, err := Describe(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.label, info.Label)
			assert.Equal(t, tt.order, info.WorkflowOrder)
			assert.NotEmpty(t, info.Tone)
		})
	}
}

func TestDescribeUnknownStatus(t *testing.T) {
	_, err := Describe(Status("archived"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStatus))
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"IN_REVIEW", "InReview", "in_review", "In Review", " in review "} {
		s, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, StatusInReview, s, raw)
	}

	_, err := ParseStatus("closed")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTerminalAndPending(t *testing.T) {
	terminal := map[Status]bool{StatusApproved: true, StatusRejected: true, StatusSettled: true, StatusWithdrawn: true}
	pending := map[Status]bool{StatusSubmitted: true, StatusInReview: true, StatusPendingVerification: true}

	for _, s := range AllStatuses() {
		assert.Equal(t, terminal[s], s.IsTerminal(), "IsTerminal(%s)", s)
		assert.Equal(t, pending[s], s.IsPending(), "IsPending(%s)", s)
	}
}

func TestProgress(t *testing.T) {
	states := func(s Status) []StageState {
		progress, err := Progress(s)
		require.NoError(t, err)
		out := make([]StageState, 0, len(progress))
		for _, p := range progress {
			out = append(out, p.State)
		}
		return out
	}

	assert.Equal(t, []StageState{StageCompleted, StageCompleted, StageCurrent, StageUpcoming, StageUpcoming, StageUpcoming}, states(StatusInReview))
	assert.Equal(t, []StageState{StageCompleted, StageCompleted, StageCompleted, StageCompleted, StageCurrent, StageUpcoming}, states(StatusRejected))
	assert.Equal(t, []StageState{StageCompleted, StageCompleted, StageCompleted, StageCompleted, StageCompleted, StageCurrent}, states(StatusSettled))
	assert.Equal(t, []StageState{StageUpcoming, StageUpcoming, StageUpcoming, StageUpcoming, StageUpcoming, StageUpcoming}, states(StatusWithdrawn))

	_, err := Progress(Status("bogus"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
