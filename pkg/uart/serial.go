package uart

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialConfig describes a serial line.
type SerialConfig struct {
	// Device is a device path, or a USB product description to look up.
	Device   string
	Baud     int
	DataBits int
	// Parity is one of None, Odd, Even, Mark, Space.
	Parity string
	// StopBits is one of One, OnePointFive, Two.
	StopBits    string
	ReadTimeout time.Duration
}

// DefaultSerialConfig is 115200 8N1.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Baud:        115200,
		DataBits:    8,
		Parity:      "None",
		StopBits:    "One",
		ReadTimeout: 100 * time.Millisecond,
	}
}

func parseParity(s string) (serial.Parity, error) {
	switch strings.ToLower(s) {
	case "", "none", "n":
		return serial.NoParity, nil
	case "odd", "o":
		return serial.OddParity, nil
	case "even", "e":
		return serial.EvenParity, nil
	case "mark", "m":
		return serial.MarkParity, nil
	case "space", "s":
		return serial.SpaceParity, nil
	}
	return serial.NoParity, fmt.Errorf("invalid parity %q", s)
}

func parseStopBits(s string) (serial.StopBits, error) {
	switch strings.ToLower(s) {
	case "", "one", "1":
		return serial.OneStopBit, nil
	case "onepointfive", "1.5":
		return serial.OnePointFiveStopBits, nil
	case "two", "2":
		return serial.TwoStopBits, nil
	}
	return serial.OneStopBit, fmt.Errorf("invalid stop bits %q", s)
}

// Mode converts the config into a serial.Mode.
func (c SerialConfig) Mode() (*serial.Mode, error) {
	if c.Baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return nil, fmt.Errorf("invalid data bits %d", c.DataBits)
	}
	parity, err := parseParity(c.Parity)
	if err != nil {
		return nil, err
	}
	stopBits, err := parseStopBits(c.StopBits)
	if err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: c.Baud,
		DataBits: c.DataBits,
		Parity:   parity,
		StopBits: stopBits,
	}, nil
}

// BitsPerByte is the number of bit times one character occupies on the
// line, rounded up.
func (c SerialConfig) BitsPerByte() int {
	bits := 1 + c.DataBits
	if p, err := parseParity(c.Parity); err == nil && p != serial.NoParity {
		bits++
	}
	switch s, _ := parseStopBits(c.StopBits); s {
	case serial.OnePointFiveStopBits, serial.TwoStopBits:
		bits += 2
	default:
		bits++
	}
	return bits
}

// ResolveDevice maps a product description to a device name. Paths are
// returned unchanged.
func ResolveDevice(device string) (string, error) {
	if strings.HasPrefix(device, "/dev/") || strings.HasPrefix(device, "COM") {
		return device, nil
	}
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}
	for _, port := range ports {
		if port.Product == device || port.Name == device {
			return port.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoDevice, device)
}

// ListDevices returns the detected serial ports.
func ListDevices() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// OpenSerial opens the serial device described by c.
func OpenSerial(c SerialConfig) (serial.Port, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	device, err := ResolveDevice(c.Device)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if c.ReadTimeout > 0 {
		if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	glog.Infof("uart: opened %s at %d baud", device, c.Baud)
	return port, nil
}
