// Package services implements the core business logic: the credit ledger,
// persona catalog, match engine with its reveal protocol, conversation
// engine and the persona reply pipeline.
//
// This file centralizes the service-level error values. Translation into
// HTTP status codes happens in the controllers layer.
package services

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is authenticated but is not a
	// participant of the match (or not the addressee of the message).
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientCredits is returned when the balance cannot cover the
	// requested action. The balance is never mutated in that case.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrPreferencesMissing is returned by FindMatch when the user has no
	// preference filter configured.
	ErrPreferencesMissing = errors.New("match preferences not configured")

	// ErrNoMatchAvailable means neither a real candidate nor a persona
	// satisfied the user's filters.
	ErrNoMatchAvailable = errors.New("no match available")

	// ErrAlreadyRequested is returned when a participant requests reveal a
	// second time.
	ErrAlreadyRequested = errors.New("reveal already requested")

	// ErrAlreadyRevealed is returned for reveal actions on a revealed match.
	ErrAlreadyRevealed = errors.New("match already revealed")

	// ErrNotRequested is returned by AcceptReveal when the counterpart has
	// not requested a reveal.
	ErrNotRequested = errors.New("no outstanding reveal request")

	// ErrInvalidState covers remaining illegal transitions, e.g. acting on
	// a skipped match.
	ErrInvalidState = errors.New("invalid match state")

	// ErrEmptyContent is returned when message content trims to empty.
	ErrEmptyContent = errors.New("message content is empty")

	// ErrConflict is returned by stores when a conditional write loses a
	// race; callers retry or fetch the winner.
	ErrConflict = errors.New("conflicting concurrent update")
)
