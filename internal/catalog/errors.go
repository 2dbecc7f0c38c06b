package catalog

import (
	"errors"
	"fmt"
)

// Error categories. Adapters map these, not the specific errors below.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("concurrent modification")
)

var (
	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrNoteNotFound   = fmt.Errorf("note %w", ErrNotFound)
	ErrRatingNotFound = fmt.Errorf("rating %w", ErrNotFound)
	ErrEntryNotFound  = fmt.Errorf("reading list entry %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	ErrNotNoteAuthor = fmt.Errorf("%w: only the author may change a note", ErrForbidden)

	ErrInvalidRating  = fmt.Errorf("%w: rating must be an integer between 1 and 10", ErrInvalidInput)
	ErrEmptyContent   = fmt.Errorf("%w: note content must not be empty", ErrInvalidInput)
	ErrContentTooLong = fmt.Errorf("%w: note content exceeds %d characters", ErrInvalidInput, MaxNoteLength)
)
