package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by CleanText when nothing is left after cleaning.
	ErrEmptyInput = errors.New("input text is empty after cleaning")
	// ErrLengthOutOfRange is the sentinel matched by every *LengthOutOfRangeError.
	ErrLengthOutOfRange = errors.New("length out of range")
	// ErrMissingColumn means the table has no column with the requested text column name.
	ErrMissingColumn = errors.New("missing text column")
	ErrInvalidBounds = errors.New("invalid bounds")
)

// LengthOutOfRangeError carries the observed cleaned length and the bounds it violated.
type LengthOutOfRangeError struct {
	Length int
	Min    int
	Max    int
}

func (e *LengthOutOfRangeError) Error() string {
	return fmt.Sprintf("length %d outside range [%d,%d]", e.Length, e.Min, e.Max)
}

func (e *LengthOutOfRangeError) Is(target error) bool {
	return target == ErrLengthOutOfRange
}
