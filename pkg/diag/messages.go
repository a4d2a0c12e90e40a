package diag

import (
	"github.com/golang/protobuf/proto"
)

// FrameEvent reports a decoded frame.
type FrameEvent struct {
	Seq                  uint64   `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Timestamp            int64    `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Data                 []byte   `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

// Reset implements proto.Message.
func (m *FrameEvent) Reset() { *m = FrameEvent{} }

// String implements proto.Message.
func (m *FrameEvent) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*FrameEvent) ProtoMessage() {}

// Counters is a snapshot of the link counters.
type Counters struct {
	State                string   `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
	Connected            bool     `protobuf:"varint,2,opt,name=connected,proto3" json:"connected,omitempty"`
	HeaderMatches        uint64   `protobuf:"varint,3,opt,name=header_matches,json=headerMatches,proto3" json:"header_matches,omitempty"`
	HeaderErrors         uint64   `protobuf:"varint,4,opt,name=header_errors,json=headerErrors,proto3" json:"header_errors,omitempty"`
	FramesReceived       uint64   `protobuf:"varint,5,opt,name=frames_received,json=framesReceived,proto3" json:"frames_received,omitempty"`
	DecodeOk             uint64   `protobuf:"varint,6,opt,name=decode_ok,json=decodeOk,proto3" json:"decode_ok,omitempty"`
	DecodeFailed         uint64   `protobuf:"varint,7,opt,name=decode_failed,json=decodeFailed,proto3" json:"decode_failed,omitempty"`
	LineErrors           uint64   `protobuf:"varint,8,opt,name=line_errors,json=lineErrors,proto3" json:"line_errors,omitempty"`
	DecodeOverruns       uint64   `protobuf:"varint,9,opt,name=decode_overruns,json=decodeOverruns,proto3" json:"decode_overruns,omitempty"`
	BadChecksum          uint64   `protobuf:"varint,10,opt,name=bad_checksum,json=badChecksum,proto3" json:"bad_checksum,omitempty"`
	BadLength            uint64   `protobuf:"varint,11,opt,name=bad_length,json=badLength,proto3" json:"bad_length,omitempty"`
	BytesReceived        uint64   `protobuf:"varint,12,opt,name=bytes_received,json=bytesReceived,proto3" json:"bytes_received,omitempty"`
	BytesDropped         uint64   `protobuf:"varint,13,opt,name=bytes_dropped,json=bytesDropped,proto3" json:"bytes_dropped,omitempty"`
	Timestamp            int64    `protobuf:"varint,14,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	RearmFailures        uint64   `protobuf:"varint,15,opt,name=rearm_failures,json=rearmFailures,proto3" json:"rearm_failures,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

// Reset implements proto.Message.
func (m *Counters) Reset() { *m = Counters{} }

// String implements proto.Message.
func (m *Counters) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Counters) ProtoMessage() {}

// Typed wraps an encoded message with its type ID.
type Typed struct {
	TypeId               uint32   `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message              []byte   `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

// Reset implements proto.Message.
func (m *Typed) Reset() { *m = Typed{} }

// String implements proto.Message.
func (m *Typed) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Typed) ProtoMessage() {}

func init() {
	proto.RegisterType((*FrameEvent)(nil), "uartsync.diag.v1.FrameEvent")
	proto.RegisterType((*Counters)(nil), "uartsync.diag.v1.Counters")
	proto.RegisterType((*Typed)(nil), "uartsync.diag.v1.Typed")
}
