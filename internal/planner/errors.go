package planner

import (
	"fmt"

	"github.com/go-errors/errors"
)

var (
	// ErrSuperseded is returned to a caller whose result arrived after a
	// newer request for the same state had already been issued.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrSessionNotFound is returned for unknown plan ids.
	ErrSessionNotFound = errors.New("plan not found")
)

// ValidationError reports a request that violates the planning contract,
// such as an unknown location id or a route computation without endpoints.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GeolocationError reports a failed device position resolution. Denial,
// disconnect, timeout, and absence of a connected client all look the same
// to the planner.
type GeolocationError struct {
	Detail string
	Err    error
}

func (e *GeolocationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to resolve device position: %s", e.Detail)
	}
	return fmt.Sprintf("failed to resolve device position: %v", e.Err)
}

func (e *GeolocationError) Unwrap() error {
	return e.Err
}
