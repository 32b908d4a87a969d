package services

import (
	"errors"
	"sync"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// Ensure Session implements the interface.
var _ driving.SessionView = (*Session)(nil)

// Session tracks the workflow phase, the header message and the single
// user-facing error message. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	phase    domain.Phase
	header   string
	errorMsg string
	teamID   string
}

// NewSession creates a session in the logged-out phase.
func NewSession() *Session {
	return &Session{
		phase:  domain.PhaseLoggedOut,
		header: domain.HeaderWelcome,
	}
}

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionState{
		Phase:        s.phase,
		Header:       s.header,
		ErrorMessage: s.errorMsg,
		TeamID:       s.teamID,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Fire applies an event. A sync requested while one is running returns
// domain.ErrSyncInProgress.
func (s *Session) Fire(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event == domain.EventSyncStarted && s.phase == domain.PhaseSyncing {
		return domain.ErrSyncInProgress
	}

	phase, header, err := domain.Transition(s.phase, event)
	if err != nil {
		return err
	}
	s.phase = phase
	if header != "" {
		s.header = header
	}
	return nil
}

// Restore sets the phase directly, e.g. to loggedIn when a cached token is found.
func (s *Session) Restore(phase domain.Phase, header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	s.header = header
}

// SelectTeam records the team the user is working on.
func (s *Session) SelectTeam(teamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamID = teamID
}

// Fail records a user-facing error and moves an in-process phase to its
// failure state. The dialog-closed case is a silent revert with no message.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseLoggingIn:
		event := domain.EventLoginFailed
		if errors.Is(err, domain.ErrDialogClosed) {
			event = domain.EventDialogClosed
		}
		s.phase, s.header, _ = domain.Transition(s.phase, event)
	case domain.PhaseFetching, domain.PhaseSyncing:
		s.phase, _, _ = domain.Transition(s.phase, domain.EventOperationFailed)
	}

	if err != nil && !errors.Is(err, domain.ErrDialogClosed) {
		s.errorMsg = err.Error()
	}
}

// DismissError clears the error message. If an operation was still marked
// in process it did not complete, so the session returns to the preceding phase.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorMsg = ""
	switch s.phase {
	case domain.PhaseLoggingIn:
		s.phase = domain.PhaseLoggedOut
	case domain.PhaseFetching, domain.PhaseSyncing:
		s.phase = domain.PhaseLoggedIn
	}
}
