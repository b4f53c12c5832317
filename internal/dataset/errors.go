package dataset

import (
	"errors"
	"fmt"
)

// validationError signals bad input (arguments or dataset shape) as opposed to I/O failures.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func validationErrorf(format string, a ...any) error {
	return validationError{msg: fmt.Sprintf(format, a...)}
}

// IsValidation reports whether err was caused by invalid input.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
