package images

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both missing images and images owned by another user,
// so callers cannot probe for other people's photos.
var ErrNotFound = errors.New("image not found")

// ValidationError is a caller mistake (bad file type, confirming a
// candidate that does not exist). Never retried, surfaced as a 4xx.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
