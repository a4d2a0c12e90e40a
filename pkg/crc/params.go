package crc

import (
	"errors"
	"fmt"
)

// Word is the unsigned integer domain of a CRC register.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Params defines a CRC configuration.
type Params[T Word] struct {
	Width uint
	Poly  T
	// Init is the checksum of empty input before XorOut, in the bit order
	// of the result.
	Init   T
	RefIn  bool
	RefOut bool
	XorOut T
	// Check is the expected checksum of ASCII "123456789".
	Check T
	Name  string
}

var (
	// ErrWidth indicates an unsupported register width.
	ErrWidth = errors.New("unsupported width")
)

// Validate checks the configuration is usable.
func (p Params[T]) Validate() error {
	switch p.Width {
	case 8, 16, 24, 32, 64:
	default:
		return fmt.Errorf("%s: %w %d", p.Name, ErrWidth, p.Width)
	}
	if p.Width > bitSize[T]() {
		return fmt.Errorf("%s: %w %d for %d-bit word", p.Name, ErrWidth, p.Width, bitSize[T]())
	}
	mask := p.mask()
	if p.Poly&^mask != 0 {
		return fmt.Errorf("%s: poly %#x exceeds width", p.Name, uint64(p.Poly))
	}
	if p.Init&^mask != 0 {
		return fmt.Errorf("%s: init %#x exceeds width", p.Name, uint64(p.Init))
	}
	if p.XorOut&^mask != 0 {
		return fmt.Errorf("%s: xorout %#x exceeds width", p.Name, uint64(p.XorOut))
	}
	return nil
}

// mask keeps the low Width bits. Shifting by the full word size yields 0,
// so the subtraction wraps to all ones for Width == bitSize.
func (p Params[T]) mask() T {
	return (T(1) << p.Width) - 1
}

func (p Params[T]) top() T {
	return T(1) << (p.Width - 1)
}

func bitSize[T Word]() uint {
	var n uint
	for v := ^T(0); v != 0; v >>= 1 {
		n++
	}
	return n
}

func reflect[T Word](v T, bits uint) T {
	var r T
	for i := uint(0); i < bits; i++ {
		r |= ((v >> i) & 1) << (bits - 1 - i)
	}
	return r
}
