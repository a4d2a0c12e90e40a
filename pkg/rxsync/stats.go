package rxsync

import "sync/atomic"

// Stats is a snapshot of the receiver counters.
type Stats struct {
	// HeaderMatches counts headers found while hunting byte by byte.
	HeaderMatches uint64
	// HeaderErrors counts looped refills whose header no longer matched.
	HeaderErrors uint64
	// FramesReceived counts completed block transfers.
	FramesReceived uint64
	DecodeOK       uint64
	DecodeFailed   uint64
	LineErrors     uint64
	// DecodeOverruns counts decodes slower than the read window.
	DecodeOverruns uint64
	// RearmFailures counts resyncs the driver refused, each one stops
	// the receiver.
	RearmFailures uint64
}

type counters struct {
	headerMatches  atomic.Uint64
	headerErrors   atomic.Uint64
	framesReceived atomic.Uint64
	decodeOK       atomic.Uint64
	decodeFailed   atomic.Uint64
	lineErrors     atomic.Uint64
	decodeOverruns atomic.Uint64
	rearmFailures  atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		HeaderMatches:  c.headerMatches.Load(),
		HeaderErrors:   c.headerErrors.Load(),
		FramesReceived: c.framesReceived.Load(),
		DecodeOK:       c.decodeOK.Load(),
		DecodeFailed:   c.decodeFailed.Load(),
		LineErrors:     c.lineErrors.Load(),
		DecodeOverruns: c.decodeOverruns.Load(),
		RearmFailures:  c.rearmFailures.Load(),
	}
}
