package card

import "errors"

// Sentinel errors for card operations. Check with errors.Is.
var (
	// ErrNotFound is returned when a card id does not exist.
	ErrNotFound = errors.New("card not found")

	// ErrValidation is returned when input fails closed-enumeration or
	// range validation. Nothing is mutated when this is returned.
	ErrValidation = errors.New("validation failed")

	// ErrVersionConflict is returned when an optimistic-concurrency update
	// loses the race. The caller should re-read the card and retry.
	ErrVersionConflict = errors.New("card version conflict")
)
