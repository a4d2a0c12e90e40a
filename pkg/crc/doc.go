// Package crc provides a parametrized table driven CRC engine.
package crc

// A configuration is described by Params in the usual catalogue form:
// width, polynomial, initial value, input/output reflection and a final
// XOR mask. MakeTable derives the 256-entry lookup table once and the
// table is read-only afterwards, so a *Table can be shared freely between
// goroutines (and interrupt-like callbacks) without locking.
//
// Init is taken in the bit order of the result, so empty input always
// yields Init ^ XorOut. This equals the catalogue model whenever a
// reflected configuration has a bit-symmetric initial value, which holds
// for every preset here.
//
// Supported widths are 8, 16, 24, 32 and 64 bits. Width 24 is carried in
// a uint32.
