package proposal

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is returned when the record store has no backing client.
var ErrStoreUnavailable = errors.New("proposal: store not configured")

// GenerationError is returned when the model output never became a valid
// document, even after the single repair attempt. Both raw outputs are kept
// for operator diagnostics and are never shown to the end user.
type GenerationError struct {
	Reason    error
	RawFirst  string
	RawRepair string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("proposal: generation failed after repair attempt: %v", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Reason
}
