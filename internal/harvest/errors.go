package harvest

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by Run when the context or session was cancelled.
// The records gathered before cancellation are still returned.
var ErrCancelled = errors.New("harvest cancelled")

// Stage names the step a fatal error happened in
type Stage string

const (
	StageSelectMonth  Stage = "select-month"
	StageSubmitSearch Stage = "submit-search"
)

// FatalError aborts a run
type FatalError struct {
	Stage    Stage
	Month    string
	Err      error
	Snapshot string // path of the saved page source, if any
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Month, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
