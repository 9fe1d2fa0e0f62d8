package commit

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed Scheduler.
var ErrClosed = errors.New("commit: closed")

// FetchError reports a non-2xx response to a results fetch.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("commit: GET %s: unexpected status %d", e.URL, e.Status)
}
