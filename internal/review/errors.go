package review

import "errors"

// Sentinel errors for review operations. Check with errors.Is.
var (
	// ErrInvalidQuality is returned for a raw quality outside 0-5.
	ErrInvalidQuality = errors.New("raw quality out of range")

	// ErrInvalidConfidence is returned for an unrecognized confidence level.
	ErrInvalidConfidence = errors.New("invalid confidence level")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when recording against an ended session.
	ErrSessionClosed = errors.New("session already ended")
)
