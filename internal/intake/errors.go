package intake

import "errors"

// ErrMissingEmail is returned when the email field is empty after trimming.
var ErrMissingEmail = errors.New("email is required")
