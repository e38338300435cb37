package attack

import (
	"errors"
	"fmt"
)

//ErrCancelled is returned by Run when the search is stopped before a match or the end of the wordlist
var ErrCancelled = errors.New("search cancelled")

var errIsDirectory = errors.New("is a directory")

//SourceUnavailableError is returned when the wordlist cannot be opened
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("wordlist %s unavailable: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}
