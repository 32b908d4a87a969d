package domain

import "time"

// OperationKind distinguishes create from update push operations.
type OperationKind string

const (
	// OperationCreate creates a new schedule group seeded with its members.
	OperationCreate OperationKind = "create"
	// OperationUpdate replaces an existing group's membership and reactivates it.
	OperationUpdate OperationKind = "update"
)

// SyncOperation is one outbound change for a single schedule group.
type SyncOperation struct {
	Kind   OperationKind
	TeamID string
	Group  *ScheduleGroup
}

// UnknownUserPolicy decides what happens to rows naming non-members.
type UnknownUserPolicy string

const (
	// UnknownUserSkip records the row as skipped and continues.
	UnknownUserSkip UnknownUserPolicy = "skip"
	// UnknownUserFail aborts the reconciliation pass.
	UnknownUserFail UnknownUserPolicy = "fail"
)

// Valid reports whether the policy is recognised.
func (p UnknownUserPolicy) Valid() bool {
	return p == UnknownUserSkip || p == UnknownUserFail
}

// Skip reasons.
const (
	SkipReasonUnknownUser = "unknown user"
	SkipReasonMissingUPN  = "missing user principal name"
)

// SkippedRow is a worksheet row that reconciliation did not apply.
type SkippedRow struct {
	Row               int
	GroupName         string
	UserPrincipalName string
	Reason            string
}

// FailedOperation is a push operation that the service rejected.
type FailedOperation struct {
	Operation SyncOperation
	Err       string
}

// SyncReport summarises one sync run.
type SyncReport struct {
	RunID      string
	TeamID     string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Operations []SyncOperation
	Skipped    []SkippedRow
	Failed     []FailedOperation
	// Error is the message of the error that ended the run, if any.
	Error string
}

// Counts returns the number of create and update operations.
func (r *SyncReport) Counts() (created, updated int) {
	for _, op := range r.Operations {
		switch op.Kind {
		case OperationCreate:
			created++
		case OperationUpdate:
			updated++
		}
	}
	return created, updated
}

// SyncRun is a persisted summary of a sync report.
type SyncRun struct {
	ID         string
	TeamID     string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	Error      string
}

// Summary converts a report to its persisted form.
func (r *SyncReport) Summary() SyncRun {
	created, updated := r.Counts()
	return SyncRun{
		ID:         r.RunID,
		TeamID:     r.TeamID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		Created:    created,
		Updated:    updated,
		Skipped:    len(r.Skipped),
		Failed:     len(r.Failed),
		Error:      r.Error,
	}
}
