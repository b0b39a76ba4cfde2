package util

import "errors"

var (
	ErrWrongStep         = errors.New("action not allowed at the current step")
	ErrMissingField      = errors.New("required field is missing")
	ErrUnknownOption     = errors.New("unknown option")
	ErrSelectionRequired = errors.New("select at least one option")
	ErrNotAuthenticated  = errors.New("account step has not completed")
	ErrInvalidHackathon  = errors.New("mission id invalid")
	ErrInvalidTeamCode   = errors.New("team code must be 6 characters")
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidRole       = errors.New("invalid dashboard role")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrNoRecommendation  = errors.New("no recommendation to act on")
	ErrBusy              = errors.New("request already in progress")
	ErrViewClosed        = errors.New("view closed before the request settled")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSession    = errors.New("stored session is invalid")
)
