package rf433

import "errors"

// Sentinel errors for bridge operations.
var (
	// ErrInvalidPayload indicates a pulse message that could not be parsed.
	ErrInvalidPayload = errors.New("rf433: invalid pulse payload")

	// ErrEmptyTrain indicates a pulse message with no pulses.
	ErrEmptyTrain = errors.New("rf433: empty pulse train")
)
