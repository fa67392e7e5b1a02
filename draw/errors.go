package draw

import "errors"

var (
	// ErrInsufficientPool is returned when a draw is started with fewer than two teams.
	ErrInsufficientPool = errors.New("at least two approved teams are required to start a draw")
	// ErrInvalidTransition is returned when an input does not apply to the current phase.
	ErrInvalidTransition = errors.New("invalid draw transition")
	// ErrSessionClosed is returned for calls made after the presenter was closed.
	ErrSessionClosed = errors.New("draw session is closed")
	ErrUnknownEvent  = errors.New("unknown draw event")
)
