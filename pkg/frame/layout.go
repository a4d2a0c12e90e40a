package frame

import (
	"errors"
	"fmt"

	"github.com/robotalks/uartsync/pkg/crc"
)

var (
	// ErrDataLength indicates the data or payload has the wrong length.
	ErrDataLength = errors.New("invalid data length")
	// ErrChecksum indicates the checksum does not match the data.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrLayout indicates an unusable layout.
	ErrLayout = errors.New("invalid frame layout")
)

// Layout describes a frame.
type Layout struct {
	Header  []byte
	DataLen int
	// Sum is the checksum over the data. Nil means no trailer.
	Sum crc.Checksummer
}

// NewLayout creates a Layout using the named CRC preset. An empty name
// means no checksum.
func NewLayout(header []byte, dataLen int, crcName string) (Layout, error) {
	l := Layout{Header: append([]byte(nil), header...), DataLen: dataLen}
	if crcName != "" {
		sum, err := crc.Lookup(crcName)
		if err != nil {
			return l, fmt.Errorf("%w: %v", ErrLayout, err)
		}
		l.Sum = sum
	}
	return l, l.Validate()
}

// Validate checks the layout is usable.
func (l Layout) Validate() error {
	if len(l.Header) == 0 {
		return fmt.Errorf("%w: empty header", ErrLayout)
	}
	if l.PayloadLen() <= 0 {
		return fmt.Errorf("%w: empty payload", ErrLayout)
	}
	return nil
}

// SumLen returns the trailer length.
func (l Layout) SumLen() int {
	if l.Sum == nil {
		return 0
	}
	return int(l.Sum.Width() / 8)
}

// PayloadLen returns the length following the header.
func (l Layout) PayloadLen() int {
	return l.DataLen + l.SumLen()
}

// FrameLen returns the full frame length.
func (l Layout) FrameLen() int {
	return len(l.Header) + l.PayloadLen()
}

// String returns a short description.
func (l Layout) String() string {
	sum := "none"
	if l.Sum != nil {
		sum = l.Sum.Name()
	}
	return fmt.Sprintf("header % x, data %d, crc %s, frame %d", l.Header, l.DataLen, sum, l.FrameLen())
}

// Encode builds a frame carrying data.
func (l Layout) Encode(data []byte) ([]byte, error) {
	return l.AppendFrame(make([]byte, 0, l.FrameLen()), data)
}

// AppendFrame appends the frame carrying data to dst.
func (l Layout) AppendFrame(dst, data []byte) ([]byte, error) {
	if len(data) != l.DataLen {
		return dst, fmt.Errorf("%w: %d, want %d", ErrDataLength, len(data), l.DataLen)
	}
	dst = append(dst, l.Header...)
	dst = append(dst, data...)
	if l.Sum != nil {
		dst = appendSum(dst, l.Sum.Sum64(data), l.SumLen())
	}
	return dst, nil
}

// Verify checks a payload and returns the data portion, which aliases
// payload.
func (l Layout) Verify(payload []byte) ([]byte, error) {
	if len(payload) != l.PayloadLen() {
		return nil, fmt.Errorf("%w: payload %d, want %d", ErrDataLength, len(payload), l.PayloadLen())
	}
	data := payload[:l.DataLen]
	if l.Sum != nil {
		want := readSum(payload[l.DataLen:])
		if got := l.Sum.Sum64(data); got != want {
			return nil, fmt.Errorf("%w: %#x, want %#x", ErrChecksum, got, want)
		}
	}
	return data, nil
}

func appendSum(dst []byte, sum uint64, n int) []byte {
	for i := 0; i < n; i++ {
		dst = append(dst, byte(sum>>(8*uint(i))))
	}
	return dst
}

func readSum(b []byte) (sum uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		sum = sum<<8 | uint64(b[i])
	}
	return
}
