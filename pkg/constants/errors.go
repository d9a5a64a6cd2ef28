package constants

import "errors"

var (
	ErrNoBaseURL = errors.New("base url not set")
	// ErrProtocolViolation marks a response that a compliant server would never
	// send: a missing required element or link, or the wrong number of entries.
	ErrProtocolViolation = errors.New("cmis protocol violation")
)
