// Package rxsync recovers fixed-length frames from a raw serial byte stream.
package rxsync

// A frame is a constant header followed by a fixed-size payload. The only
// delimiter is the header itself, so the receiver hunts for it one byte at a
// time (WaitHead), fetches the rest of the first frame with a one-shot block
// transfer (Receiving) and then lets the block engine refill the whole frame
// buffer in a loop (DMAActive), re-checking the header after every refill.
// Any line fault or header mismatch drops back to byte-wise hunting.
//
// The receiver has no goroutine of its own. OnBytesArrived and OnLineError
// are called by the driver from its delivery context and run to completion.
//
// Timing contract: in DMAActive the driver starts capturing the next frame
// into the same buffer before Decode is called, so Decode must return before
// HeaderLen bytes have arrived on the line. Decode only ever sees the
// payload region, which is what makes this window HeaderLen bytes long.
// WithReadWindow turns the bound into a measured guard.
