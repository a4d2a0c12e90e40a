package diag

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/rxsync"
	"github.com/robotalks/uartsync/pkg/uart"
)

// Type IDs of the messages carried in Typed.
const (
	FrameEventTypeID uint32 = 0x80000001
	CountersTypeID   uint32 = 0x80000002
)

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// NewFrameEvent converts a decoded frame.
func NewFrameEvent(f *frame.Frame) *FrameEvent {
	return &FrameEvent{
		Seq:       f.Seq,
		Timestamp: f.Time.UnixNano(),
		Data:      f.Data,
	}
}

// Time returns the event timestamp.
func (m *FrameEvent) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}

// Sources are the components a Counters snapshot is taken from. Nil
// members are skipped.
type Sources struct {
	Receiver *rxsync.Receiver
	Decoder  *frame.Decoder
	Port     *uart.Port
}

// NewCounters takes a snapshot.
func NewCounters(src Sources, now time.Time) *Counters {
	c := &Counters{Timestamp: now.UnixNano()}
	if rx := src.Receiver; rx != nil {
		s := rx.Stats()
		c.State = rx.State().String()
		c.Connected = rx.IsConnected()
		c.HeaderMatches = s.HeaderMatches
		c.HeaderErrors = s.HeaderErrors
		c.FramesReceived = s.FramesReceived
		c.DecodeOk = s.DecodeOK
		c.DecodeFailed = s.DecodeFailed
		c.LineErrors = s.LineErrors
		c.DecodeOverruns = s.DecodeOverruns
		c.RearmFailures = s.RearmFailures
	}
	if d := src.Decoder; d != nil {
		s := d.Stats()
		c.BadChecksum = s.BadChecksum
		c.BadLength = s.BadLength
	}
	if p := src.Port; p != nil {
		s := p.Stats()
		c.BytesReceived = s.Received
		c.BytesDropped = s.Dropped
	}
	return c
}

func typeIDOf(msg proto.Message) (uint32, error) {
	switch msg.(type) {
	case *FrameEvent:
		return FrameEventTypeID, nil
	case *Counters:
		return CountersTypeID, nil
	}
	return 0, fmt.Errorf("not a diagnostics message: %T", msg)
}

// Marshal encodes msg wrapped in Typed.
func Marshal(msg proto.Message) ([]byte, error) {
	typeID, err := typeIDOf(msg)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&Typed{TypeId: typeID, Message: data})
}

// Unmarshal decodes a Typed wrapped message.
func Unmarshal(data []byte) (proto.Message, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	var msg proto.Message
	switch typed.TypeId {
	case FrameEventTypeID:
		msg = &FrameEvent{}
	case CountersTypeID:
		msg = &Counters{}
	default:
		return nil, &ErrUnknownType{TypeID: typed.TypeId}
	}
	if err := proto.Unmarshal(typed.Message, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
