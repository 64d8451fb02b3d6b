package gym

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New("gym: not initialized")
	ErrNoGame         = errors.New("gym: no game running")
	ErrNilHandle      = errors.New("gym: nil handle")
	ErrNotImplemented = errors.New("gym: not implemented")

	ErrRulesetLoad   = errors.New("gym: ruleset load failed")
	ErrPlayerCreate  = errors.New("gym: player creation failed")
	ErrMapGenerate   = errors.New("gym: map generation failed")
	ErrStartSequence = errors.New("gym: start sequence failed")
)

// BootstrapError reports the new-game step that failed. Steps that ran
// before it are not undone.
type BootstrapError struct {
	Step int
	Kind error // one of the bootstrap sentinels
	Err  error
}

func (e *BootstrapError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("new game step %d: %v", e.Step, e.Kind)
	}
	return fmt.Sprintf("new game step %d: %v: %v", e.Step, e.Kind, e.Err)
}

// Unwrap exposes both the step sentinel and the engine cause.
func (e *BootstrapError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stepErr(step int, kind, err error) error {
	return &BootstrapError{Step: step, Kind: kind, Err: err}
}

// Status codes for callers that want integers instead of errors.
const (
	StatusOK             = 0
	StatusNotInitialized = -1
	StatusNoGame         = -2
	StatusNilHandle      = -3
	StatusNotImplemented = -4
	StatusRulesetLoad    = -5
	StatusPlayerCreate   = -6
	StatusMapGenerate    = -7
	StatusStartSequence  = -8
	StatusFailed         = -99
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{ErrNotInitialized, StatusNotInitialized},
	{ErrNoGame, StatusNoGame},
	{ErrNilHandle, StatusNilHandle},
	{ErrNotImplemented, StatusNotImplemented},
	{ErrRulesetLoad, StatusRulesetLoad},
	{ErrPlayerCreate, StatusPlayerCreate},
	{ErrMapGenerate, StatusMapGenerate},
	{ErrStartSequence, StatusStartSequence},
}

// Status maps an error from this package to a status code. nil is 0; every
// failure is negative.
func Status(err error) int {
	if err == nil {
		return StatusOK
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return StatusFailed
}
