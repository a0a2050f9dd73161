package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a coin id named by the caller is absent from
// the fetched coin list.
var ErrNotFound = errors.New("coin not found")

// ValidationError rejects a mutation at the boundary. State is unchanged and
// the message is safe to show inline.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
