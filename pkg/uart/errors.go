package uart

import (
	"errors"
	"fmt"

	"github.com/robotalks/uartsync/pkg/rxsync"
)

var (
	// ErrNoHandler indicates no Handler is bound to the Port.
	ErrNoHandler = errors.New("no handler bound")
	// ErrBounds indicates a reception does not fit the buffer.
	ErrBounds = errors.New("reception out of buffer bounds")
	// ErrNoDevice indicates no serial device matched.
	ErrNoDevice = errors.New("no serial device")
)

// FaultError is returned by readers to report line faults in the stream.
type FaultError struct {
	Faults rxsync.Fault
}

// Error implements error.
func (e *FaultError) Error() string {
	return fmt.Sprintf("line fault: %s", e.Faults)
}
