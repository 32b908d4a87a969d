// Package oauth runs the interactive Microsoft sign-in through the system
// browser and a loopback HTTP server.
package oauth

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

// Dialog status values carried by a DialogMessage.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Dialog lifecycle codes.
const (
	// CodePageNotFound means the dialog could not load its page.
	CodePageNotFound = 12002
	// CodeInsecureURL means the dialog was sent to a plain http URL.
	CodeInsecureURL = 12003
	// CodeClosed means the user closed the dialog.
	CodeClosed = 12006
)

// Messages shown for dialog lifecycle codes.
const (
	MessagePageNotFound = "The dialog box has been directed to a page that it cannot find or load, or the URL syntax is invalid."
	MessageInsecureURL  = "The dialog box has been directed to a URL with the HTTP protocol. HTTPS is required."
	MessageUnknown      = "Unknown error in dialog box."
)

// DialogMessage is what the callback page posts back to the waiting login.
type DialogMessage struct {
	Status string `json:"status"`
	// Result is the access token on success or an error description.
	Result string `json:"result"`

	token *domain.OAuthToken
}

// Token returns the exchanged token of a successful message.
func (m DialogMessage) Token() *domain.OAuthToken {
	return m.token
}

// DialogError is a dialog lifecycle failure.
type DialogError struct {
	Code int
}

// Error returns the fixed message for the code. A closed dialog, which has
// no user-facing message, reads as domain.ErrDialogClosed.
func (e *DialogError) Error() string {
	if e.Code == CodeClosed {
		return domain.ErrDialogClosed.Error()
	}
	return DialogErrorMessage(e.Code)
}

// Unwrap maps a closed dialog to domain.ErrDialogClosed.
func (e *DialogError) Unwrap() error {
	if e.Code == CodeClosed {
		return domain.ErrDialogClosed
	}
	return nil
}

// DialogErrorMessage returns the user-facing message for a lifecycle code.
// A closed dialog has no message.
func DialogErrorMessage(code int) string {
	switch code {
	case CodePageNotFound:
		return MessagePageNotFound
	case CodeInsecureURL:
		return MessageInsecureURL
	case CodeClosed:
		return ""
	default:
		return MessageUnknown
	}
}

// messageError converts an error message from the callback into an error.
func messageError(msg DialogMessage) error {
	if msg.Status == StatusSuccess {
		return nil
	}
	if msg.Result == "" {
		return errors.New(MessageUnknown)
	}
	return fmt.Errorf("sign-in failed: %s", msg.Result)
}
