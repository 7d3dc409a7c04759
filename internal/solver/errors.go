package solver

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned for empty or non-rectangular grids.
var ErrInvalidGrid = errors.New("invalid grid")

// ErrDictionaryUnavailable is returned when no usable word survives filtering.
var ErrDictionaryUnavailable = errors.New("dictionary unavailable")

// GridError describes why a raw grid was rejected.
type GridError struct {
	Row    int // offending row, -1 when the grid as a whole is at fault
	Want   int // expected column count
	Got    int // actual column count
	Reason string
}

func (e *GridError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("invalid grid: %s", e.Reason)
	}
	return fmt.Sprintf("invalid grid: row %d has %d columns, want %d", e.Row, e.Got, e.Want)
}

// Unwrap lets callers match any GridError with errors.Is(err, ErrInvalidGrid).
func (e *GridError) Unwrap() error { return ErrInvalidGrid }
