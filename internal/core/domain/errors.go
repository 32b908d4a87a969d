package domain

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a caller supplied malformed input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates no usable credentials are available.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the stored credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrUnknownUser indicates a worksheet row names a user that is not a team member.
	ErrUnknownUser = errors.New("unknown user")

	// ErrDuplicateUPN indicates two members share a user principal name.
	ErrDuplicateUPN = errors.New("duplicate user principal name")

	// ErrTableNotFound indicates the expected worksheet table is missing.
	ErrTableNotFound = errors.New("worksheet table not found")

	// ErrSyncInProgress indicates a sync was requested while one is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrInvalidTransition indicates an event is not valid in the current phase.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrDialogClosed indicates the user closed the sign-in dialog.
	ErrDialogClosed = errors.New("dialog closed by user")
)
