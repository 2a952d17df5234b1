package domain

import (
	"errors"
	"fmt"
)

// ErrWorkspaceNotFound is returned when a session has no stored workspace.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ErrNotFound is returned when a remote record (profile, settings row, company) is absent.
var ErrNotFound = errors.New("record not found")

// ErrValidation marks client-side validation failures (empty required field, bad value).
var ErrValidation = errors.New("validation failed")

// ErrSelectionLimit is returned when a fourth company is added to a selection.
var ErrSelectionLimit = errors.New("maximum selection reached")

// ErrEmptySelection is returned when a roadmap is requested without any selected company.
var ErrEmptySelection = errors.New("no companies selected")

// ErrMilestoneNotFound is returned when toggling a milestone id that is not in the roadmap.
var ErrMilestoneNotFound = errors.New("milestone not found")

// ErrUnauthenticated is returned when a request carries no valid session.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrNotOnboarded is returned when a gated route is reached before onboarding completes.
var ErrNotOnboarded = errors.New("onboarding not completed")

// ErrAlreadyOnboarded is returned when an onboarded user reaches the onboarding flow.
var ErrAlreadyOnboarded = errors.New("onboarding already completed")

// ErrRemote wraps failures of the hosted backend (network, HTTP 5xx, malformed payloads).
var ErrRemote = errors.New("remote call failed")

// NoticeError is an error that carries the notice shown to the user.
type NoticeError struct {
	Notice Notice
	Err    error
}

func (e *NoticeError) Error() string {
	if e.Err == nil {
		return e.Notice.Title
	}
	return fmt.Sprintf("%s: %v", e.Notice.Title, e.Err)
}

func (e *NoticeError) Unwrap() error { return e.Err }

// WithNotice attaches a user-facing notice to err.
func WithNotice(err error, notice Notice) error {
	return &NoticeError{Notice: notice, Err: err}
}

// NoticeFrom extracts the notice attached to err, if any.
func NoticeFrom(err error) (Notice, bool) {
	var ne *NoticeError
	if errors.As(err, &ne) {
		return ne.Notice, true
	}
	return Notice{}, false
}
