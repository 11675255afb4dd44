package homology

import "fmt"

// ErrHomologyLookup indicates a failure to obtain the reference homology
// table: unreachable location, missing resource or undecodable payload.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrHomologyLookup struct {
	Location string
	cause    error
}

func (e *ErrHomologyLookup) Error() string {
	return fmt.Sprintf("homology lookup at %q failed: %v", e.Location, e.cause)
}

func (e *ErrHomologyLookup) Unwrap() error { return e.cause }
