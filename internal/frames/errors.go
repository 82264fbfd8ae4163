package frames

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrameSize is a caller error: a table needs at least one frame.
	ErrInvalidFrameSize = errors.New("frames: frame size must be at least 1")
	ErrNoPolicy         = errors.New("frames: nil replacement policy")

	// ErrInvalidState rejects a caller-supplied frame state in Restore.
	ErrInvalidState = errors.New("frames: invalid frame state")

	// ErrInvariantViolation means a replacement policy broke its contract.
	// It is a programming error; the run that hit it is not valid.
	ErrInvariantViolation = errors.New("frames: invariant violation")
)

// InvariantError carries the context of a broken policy contract.
type InvariantError struct {
	Policy   string
	Op       string
	Victim   uint32
	Resident []uint32
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("frames: invariant violation: %s: policy %q victim=%d resident=%v",
		e.Op, e.Policy, e.Victim, e.Resident)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }
