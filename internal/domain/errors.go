package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded, including
	// malformed payloads that must not partially hydrate a session.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEmpty is returned by loaders for quizzes with no questions;
	// such quizzes never reach the playback engine.
	ErrQuizEmpty = errors.New("quiz has no questions")
	// ErrSessionNotFound is returned when a playback session has been torn down.
	ErrSessionNotFound = errors.New("playback session not found")
	// ErrSessionClosed is returned when an event is sent to a closed session.
	ErrSessionClosed = errors.New("playback session closed")
	// ErrQuizNotComplete is returned when results are requested before the
	// terminal phase has been reached.
	ErrQuizNotComplete = errors.New("quiz not complete")
	// ErrEmptyGuestName rejects score submissions with a blank display name
	// before any network call is made.
	ErrEmptyGuestName = errors.New("guest name must not be empty")
	// ErrGuestNameTooLong rejects display names over the length limit.
	ErrGuestNameTooLong = errors.New("guest name too long")
)
