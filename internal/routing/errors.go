package routing

import "fmt"

// AuthError means the directions service rejected (or was never given) the
// API credential. It is surfaced separately from ComputeError so operators
// can tell a bad key apart from a transient routing failure.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "routing credential rejected"
	}
	return fmt.Sprintf("routing credential rejected: %s", e.Detail)
}

// ComputeError covers every other failure of a directions call: network
// errors, non-2xx responses and malformed bodies. Detail carries the
// upstream diagnostic text when there is one.
type ComputeError struct {
	Detail string
	Err    error
}

func (e *ComputeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route computation failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("route computation failed: %s", e.Detail)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}
