package vixsrc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is a non-2xx upstream response.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrNoDataScript means no inline script carries the player config.
	ErrNoDataScript = errors.New("no data script")
	// ErrMissingFields means the config script did not define
	// masterPlaylist.params and video.id.
	ErrMissingFields = errors.New("missing required fields")
)

// StageError records which pipeline stage failed and on what URL.
type StageError struct {
	Stage string
	URL   string
	Err   error
}

func (e *StageError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
