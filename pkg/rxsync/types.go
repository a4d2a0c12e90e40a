package rxsync

import (
	"errors"
	"strings"
)

// SyncState is the state of the receiver.
type SyncState int32

const (
	// Stopped means no reception is armed.
	Stopped SyncState = iota
	// WaitHead means scanning single bytes for the header.
	WaitHead
	// Receiving means the header matched and the payload is being fetched.
	Receiving
	// DMAActive means the block engine refills the whole frame in a loop.
	DMAActive
)

// String implements fmt.Stringer.
func (s SyncState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case WaitHead:
		return "WaitHead"
	case Receiving:
		return "Receiving"
	case DMAActive:
		return "DMAActive"
	}
	return "Unknown"
}

// Fault is the set of line fault flags raised by the driver.
type Fault uint8

// Line faults.
const (
	FaultParity Fault = 1 << iota
	FaultFraming
	FaultNoise
	FaultOverrun

	FaultNone Fault = 0
)

// String implements fmt.Stringer.
func (f Fault) String() string {
	if f == FaultNone {
		return "none"
	}
	var names []string
	for _, n := range []struct {
		bit  Fault
		name string
	}{
		{FaultParity, "parity"},
		{FaultFraming, "framing"},
		{FaultNoise, "noise"},
		{FaultOverrun, "overrun"},
	} {
		if f&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Framer supplies the frame specific pieces.
type Framer interface {
	// Header returns the header pattern. It must not change.
	Header() []byte
	// Decode validates and consumes a payload. The slice aliases the
	// receive buffer and is only valid until Decode returns.
	Decode(payload []byte) bool
}

// Driver is the serial hardware the receiver is bound to.
type Driver interface {
	// Bound reports whether a channel is attached.
	Bound() bool
	// Circular reports whether the block engine restarts by itself.
	Circular() bool
	// ReceiveByte arms reception of one byte into buf[offset].
	ReceiveByte(buf []byte, offset int) error
	// ReceiveOnce arms a one-shot block reception of n bytes at buf[offset].
	ReceiveOnce(buf []byte, offset, n int) error
	// ReceiveLoop arms looped block reception of buf[:n].
	ReceiveLoop(buf []byte, n int) error
	// Abort cancels any armed reception.
	Abort() error
	// Faults returns the pending fault flags.
	Faults() Fault
	// ClearFaults clears all fault flags.
	ClearFaults()
}

// Watchdog tracks liveness of the link.
type Watchdog interface {
	Feed()
	IsFed() bool
}

var (
	// ErrNoChannel indicates the driver has no channel bound.
	ErrNoChannel = errors.New("no channel bound")
	// ErrNotCircular indicates the block engine is not in looped mode.
	ErrNotCircular = errors.New("block transfer is not circular")
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("already started")
	// ErrFrameLength indicates HeaderLen and FrameLen are inconsistent.
	ErrFrameLength = errors.New("invalid frame length")
)
