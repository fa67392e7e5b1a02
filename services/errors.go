package services

import (
	"errors"

	"github.com/Dosada05/championship-draw/draw"
)

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Draw lifecycle.
	ErrInsufficientPool  = draw.ErrInsufficientPool
	ErrInvalidTransition = draw.ErrInvalidTransition
	ErrDrawNotOpen       = errors.New("no draw session is open for this tournament")
	ErrDrawNotComplete   = errors.New("draw is not complete")
	ErrDrawInProgress    = errors.New("a live draw is open for this tournament")

	// ErrPersistenceWriteFailure means the bracket could not be saved. The
	// completed draw stays on screen so the save can be retried.
	ErrPersistenceWriteFailure = errors.New("failed to save bracket")

	// Auth.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)
