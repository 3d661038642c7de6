package lifecycle

import "fmt"

// Diagnostic kinds reported for non-fatal failures
const (
	KindDecode   = "decode"
	KindMonitor  = "monitor"
	KindPresent  = "present"
	KindTeardown = "teardown"
)

// ClassRegistrationError is fatal: no window can be created without classes
type ClassRegistrationError struct {
	Err error
}

func (e *ClassRegistrationError) Error() string {
	return fmt.Sprintf("failed to register window classes: %v", e.Err)
}

func (e *ClassRegistrationError) Unwrap() error { return e.Err }

func (e *ClassRegistrationError) Cause() error { return e.Err }

// ControlWindowCreationError is fatal: without the control window the user
// has no way to close the overlays
type ControlWindowCreationError struct {
	Err error
}

func (e *ControlWindowCreationError) Error() string {
	return fmt.Sprintf("failed to create control window: %v", e.Err)
}

func (e *ControlWindowCreationError) Unwrap() error { return e.Err }

func (e *ControlWindowCreationError) Cause() error { return e.Err }

// ExitCode maps a startup error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
