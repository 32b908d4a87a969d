package domain

import "fmt"

// Phase is a stage of the sign-in / fetch / sync workflow.
type Phase string

// Workflow phases.
const (
	PhaseLoggedOut Phase = "loggedOut"
	PhaseLoggingIn Phase = "loggingIn"
	PhaseLoggedIn  Phase = "loggedIn"
	PhaseFetching  Phase = "fetching"
	PhaseFetched   Phase = "fetched"
	PhaseSyncing   Phase = "syncing"
	PhaseSynced    Phase = "synced"
)

// InProcess reports whether the phase is waiting on a long-running operation.
func (p Phase) InProcess() bool {
	return p == PhaseLoggingIn || p == PhaseFetching || p == PhaseSyncing
}

// SignedIn reports whether the phase implies a valid session.
func (p Phase) SignedIn() bool {
	return p != PhaseLoggedOut && p != PhaseLoggingIn
}

// SessionState is a snapshot of the workflow session.
type SessionState struct {
	Phase        Phase
	Header       string
	ErrorMessage string
	TeamID       string
}

// Event triggers a phase transition.
type Event string

// Workflow events.
const (
	EventLoginStarted    Event = "loginStarted"
	EventLoginSucceeded  Event = "loginSucceeded"
	EventLoginFailed     Event = "loginFailed"
	EventDialogClosed    Event = "dialogClosed"
	EventFetchStarted    Event = "fetchStarted"
	EventFetchCompleted  Event = "fetchCompleted"
	EventSyncStarted     Event = "syncStarted"
	EventSyncCompleted   Event = "syncCompleted"
	EventOperationFailed Event = "operationFailed"
	EventLoggedOut       Event = "loggedOut"
)

// Header messages shown for phases.
const (
	HeaderWelcome       = "Welcome"
	HeaderSelectTeam    = "Select Team"
	HeaderFetchComplete = "Success"
	HeaderSyncing       = "Sync data in progress"
	HeaderSyncComplete  = "Sync Complete"
)

type transitionKey struct {
	from  Phase
	event Event
}

type transitionTarget struct {
	to     Phase
	header string
}

var transitions = map[transitionKey]transitionTarget{
	{PhaseLoggedOut, EventLoginStarted}:   {PhaseLoggingIn, ""},
	{PhaseLoggingIn, EventLoginSucceeded}: {PhaseLoggedIn, HeaderSelectTeam},
	{PhaseLoggingIn, EventLoginFailed}:    {PhaseLoggedOut, HeaderWelcome},
	{PhaseLoggingIn, EventDialogClosed}:   {PhaseLoggedOut, HeaderWelcome},

	{PhaseLoggedIn, EventFetchStarted}:   {PhaseFetching, ""},
	{PhaseFetched, EventFetchStarted}:    {PhaseFetching, ""},
	{PhaseSynced, EventFetchStarted}:     {PhaseFetching, ""},
	{PhaseFetching, EventFetchCompleted}: {PhaseFetched, HeaderFetchComplete},

	{PhaseLoggedIn, EventSyncStarted}:  {PhaseSyncing, HeaderSyncing},
	{PhaseFetched, EventSyncStarted}:   {PhaseSyncing, HeaderSyncing},
	{PhaseSynced, EventSyncStarted}:    {PhaseSyncing, HeaderSyncing},
	{PhaseSyncing, EventSyncCompleted}: {PhaseSynced, HeaderSyncComplete},

	{PhaseFetching, EventOperationFailed}: {PhaseLoggedIn, ""},
	{PhaseSyncing, EventOperationFailed}:  {PhaseLoggedIn, ""},
}

// Transition returns the phase reached by applying the event, and the header
// message to show (empty means unchanged).
func Transition(from Phase, event Event) (Phase, string, error) {
	if event == EventLoggedOut {
		if from == PhaseLoggedOut {
			return from, "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
		}
		return PhaseLoggedOut, HeaderWelcome, nil
	}
	target, ok := transitions[transitionKey{from, event}]
	if !ok {
		return from, "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
	}
	return target.to, target.header, nil
}
