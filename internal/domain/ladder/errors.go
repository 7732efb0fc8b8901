package ladder

import "errors"

// ErrPanic marks a rung that panicked instead of returning an error.
var ErrPanic = errors.New("rung panicked")
