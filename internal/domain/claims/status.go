package claims

import (
	"fmt"
	"strings"
)

// Status represents the workflow status of a claim.
type Status string

const (
	StatusPendingSubmission   Status = "pending_submission"
	StatusSubmitted           Status = "submitted"
	StatusInReview            Status = "in_review"
	StatusPendingVerification Status = "pending_verification"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
	StatusSettled             Status = "settled"
	StatusWithdrawn           Status = "withdrawn"
)

// StatusInfo holds the display semantics of a status.
type StatusInfo struct {
	Label string `json:"label"`
	// WorkflowOrder positions the status on the progress tracker. It is
	// presentational and never consulted for transition legality.
	WorkflowOrder int    `json:"workflowOrder"`
	Tone          string `json:"tone"`
}

var statusRegistry = map[Status]StatusInfo{
	StatusPendingSubmission:   {Label: "Pending Submission", WorkflowOrder: 0, Tone: "status-pending-submission"},
	StatusSubmitted:           {Label: "Submitted", WorkflowOrder: 1, Tone: "status-submitted"},
	StatusInReview:            {Label: "In Review", WorkflowOrder: 2, Tone: "status-in-review"},
	StatusPendingVerification: {Label: "Pending Verification", WorkflowOrder: 3, Tone: "status-pending-verification"},
	StatusApproved:            {Label: "Approved", WorkflowOrder: 4, Tone: "status-approved"},
	StatusRejected:            {Label: "Rejected", WorkflowOrder: 4, Tone: "status-rejected"},
	StatusSettled:             {Label: "Settled", WorkflowOrder: 5, Tone: "status-settled"},
	StatusWithdrawn:           {Label: "Withdrawn", WorkflowOrder: 0, Tone: "status-withdrawn"},
}

// AllStatuses returns every status in workflow order.
func AllStatuses() []Status {
	return []Status{
		StatusPendingSubmission,
		StatusSubmitted,
		StatusInReview,
		StatusPendingVerification,
		StatusApproved,
		StatusRejected,
		StatusSettled,
		StatusWithdrawn,
	}
}

// Describe returns the display semantics of a status.
func Describe(s Status) (StatusInfo, error) {
	info, ok := statusRegistry[s]
	if !ok {
		return StatusInfo{}, fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return info, nil
}

// IsValid returns true if the status is one of the fixed set.
func (s Status) IsValid() bool {
	_, ok := statusRegistry[s]
	return ok
}

// Label returns the display label, or the raw token for an unknown status.
func (s Status) Label() string {
	if info, ok := statusRegistry[s]; ok {
		return info.Label
	}
	return string(s)
}

// IsTerminal returns true for statuses with at most one fixed exit.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusSettled, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsPending returns true for statuses counted as pending on the dashboard.
func (s Status) IsPending() bool {
	return s == StatusSubmitted || s == StatusInReview || s == StatusPendingVerification
}

// ParseStatus accepts the status token in snake, upper-snake, camel or label form.
func ParseStatus(raw string) (Status, error) {
	key := foldToken(raw)
	for _, s := range AllStatuses() {
		if foldToken(string(s)) == key || foldToken(s.Label()) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

func foldToken(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(strings.TrimSpace(s)) {
		if c == '_' || c == ' ' || c == '-' {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ========================================================================
// Progress tracker
// ========================================================================

// WorkflowStage is one step of the progress tracker. The decision stage
// groups Approved and Rejected.
type WorkflowStage struct {
	Order    int      `json:"order"`
	Label    string   `json:"label"`
	Statuses []Status `json:"statuses"`
}

// StageState is the rendering state of a stage for a given claim status.
type StageState string

const (
	StageCompleted StageState = "completed"
	StageCurrent   StageState = "current"
	StageUpcoming  StageState = "upcoming"
)

// StageProgress pairs a stage with its state.
type StageProgress struct {
	Stage WorkflowStage `json:"stage"`
	State StageState    `json:"state"`
}

// WorkflowStages returns the progress tracker stages.
func WorkflowStages() []WorkflowStage {
	return []WorkflowStage{
		{Order: 0, Label: "Pending Submission", Statuses: []Status{StatusPendingSubmission}},
		{Order: 1, Label: "Submitted", Statuses: []Status{StatusSubmitted}},
		{Order: 2, Label: "In Review", Statuses: []Status{StatusInReview}},
		{Order: 3, Label: "Pending Verification", Statuses: []Status{StatusPendingVerification}},
		{Order: 4, Label: "Approved / Rejected", Statuses: []Status{StatusApproved, StatusRejected}},
		{Order: 5, Label: "Settled", Statuses: []Status{StatusSettled}},
	}
}

// Progress derives the tracker state for a claim in status s. A withdrawn
// claim has left the workflow, so no stage is current or completed.
func Progress(s Status) ([]StageProgress, error) {
	info, err := Describe(s)
	if err != nil {
		return nil, err
	}

	stages := WorkflowStages()
	result := make([]StageProgress, 0, len(stages))
	for _, stage := range stages {
		state := StageUpcoming
		switch {
		case s == StatusWithdrawn:
		case info.WorkflowOrder > stage.Order:
			state = StageCompleted
		case info.WorkflowOrder == stage.Order:
			state = StageCurrent
		}
		result = append(result, StageProgress{Stage: stage, State: state})
	}
	return result, nil
}
