package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/rxsync"
	"github.com/robotalks/uartsync/pkg/uart"
)

// Config provides the options of the frame sync daemon and tools.
type Config struct {
	// ConfigFile is an optional TOML file applied by Load.
	ConfigFile string

	Serial uart.SerialConfig

	Header  HexBytes
	DataLen int
	// CRC is the catalogue name of the checksum, empty for none.
	CRC string

	Liveness time.Duration
	// ReadGuard enables timing of decodes against the header window.
	ReadGuard bool

	// BrokerURL e.g. mqtt://host:port/topic-prefix. Empty disables MQTT.
	BrokerURL     string
	StatsInterval time.Duration
	// ListenAddr serves the websocket tap. Empty disables it.
	ListenAddr string
	DeviceID   string
}

var defaultConfig = Config{
	Serial:        uart.DefaultSerialConfig(),
	Header:        HexBytes{0xaa, 0x55},
	DataLen:       8,
	CRC:           "CRC-16/MODBUS",
	Liveness:      rxsync.DefaultLiveness,
	ReadGuard:     true,
	StatsInterval: 5 * time.Second,
}

func init() {
	if val := os.Getenv("UARTSYNC_CONFIG"); val != "" {
		defaultConfig.ConfigFile = val
	}
	if val := os.Getenv("UARTSYNC_DEVICE"); val != "" {
		defaultConfig.Serial.Device = val
	}
	if val := os.Getenv("UARTSYNC_BAUD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.Serial.Baud = n
		} else {
			glog.Warningf("UARTSYNC_BAUD: %v", err)
		}
	}
	if val := os.Getenv("UARTSYNC_HEADER"); val != "" {
		if err := defaultConfig.Header.Set(val); err != nil {
			glog.Warningf("UARTSYNC_HEADER: %v", err)
		}
	}
	if val := os.Getenv("UARTSYNC_DATA_LEN"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.DataLen = n
		} else {
			glog.Warningf("UARTSYNC_DATA_LEN: %v", err)
		}
	}
	if val, ok := os.LookupEnv("UARTSYNC_CRC"); ok {
		defaultConfig.CRC = val
	}
	if val := os.Getenv("UARTSYNC_BROKER_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	if val := os.Getenv("UARTSYNC_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
	if val := os.Getenv("UARTSYNC_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	SetupFlagSet(flag.CommandLine, &defaultConfig)
}

// SetupFlagSet registers flags writing into c.
func SetupFlagSet(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "TOML config file.")
	fs.StringVar(&c.Serial.Device, "device", c.Serial.Device, "Serial device path or USB product name.")
	fs.IntVar(&c.Serial.Baud, "baud", c.Serial.Baud, "Serial baud rate.")
	fs.IntVar(&c.Serial.DataBits, "databits", c.Serial.DataBits, "Data bits [5|6|7|8].")
	fs.StringVar(&c.Serial.Parity, "parity", c.Serial.Parity, "Parity [None|Odd|Even|Mark|Space].")
	fs.StringVar(&c.Serial.StopBits, "stopbits", c.Serial.StopBits, "Stop bits [One|OnePointFive|Two].")
	fs.Var(&c.Header, "header", "Frame header in hex, e.g. aa55.")
	fs.IntVar(&c.DataLen, "data-len", c.DataLen, "Data bytes per frame.")
	fs.StringVar(&c.CRC, "crc", c.CRC, "Checksum preset name, empty for none.")
	fs.DurationVar(&c.Liveness, "liveness", c.Liveness, "Link is down when no frame decodes for this long.")
	fs.BoolVar(&c.ReadGuard, "read-guard", c.ReadGuard, "Warn when decoding outlasts the header window.")
	fs.StringVar(&c.BrokerURL, "broker", c.BrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/uartsync/.")
	fs.DurationVar(&c.StatsInterval, "stats-interval", c.StatsInterval, "Interval of counter reports, 0 disables.")
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "Websocket listen address, e.g. :8080.")
	fs.StringVar(&c.DeviceID, "device-id", c.DeviceID, "Device ID, defaults to one derived from the machine ID.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Header = append(HexBytes(nil), defaultConfig.Header...)
	return &conf
}

// Load creates a Config from defaults and the config file. Values of
// flags set on the command line take precedence over the file.
func Load() (*Config, error) {
	conf := NewConfig()
	if conf.ConfigFile == "" {
		return conf, conf.Validate()
	}
	explicit := make(map[string]bool)
	if flag.Parsed() {
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	}
	if err := conf.LoadFile(conf.ConfigFile, func(key string) bool { return explicit[key] }); err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// Validate checks the config.
func (c *Config) Validate() error {
	if _, err := c.Serial.Mode(); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	if c.Liveness <= 0 {
		return errors.New("liveness must be positive")
	}
	if c.StatsInterval < 0 {
		return errors.New("stats-interval must not be negative")
	}
	return nil
}

// Layout builds the frame layout.
func (c *Config) Layout() (frame.Layout, error) {
	return frame.NewLayout(c.Header, c.DataLen, c.CRC)
}

// ReadWindow returns the decode budget, zero if the guard is disabled.
func (c *Config) ReadWindow() time.Duration {
	if !c.ReadGuard {
		return 0
	}
	return rxsync.HeaderWindow(c.Serial.Baud, len(c.Header), c.Serial.BitsPerByte())
}

// ClientID returns the device ID, deriving one from the machine if unset.
func (c *Config) ClientID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return MachineID()
}

// MachineID retrieves an application specific ID of the machine.
func MachineID() string {
	id, err := machineid.ProtectedID("uartsync")
	if err != nil {
		glog.Warningf("machine id: %v", err)
		if host, err := os.Hostname(); err == nil {
			return host
		}
		return "unknown"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// HexBytes is a flag.Value of bytes written in hex.
type HexBytes []byte

// String implements flag.Value.
func (b *HexBytes) String() string {
	if b == nil {
		return ""
	}
	return hex.EncodeToString(*b)
}

// Set implements flag.Value. Spaces, colons and a 0x prefix are accepted.
func (b *HexBytes) Set(s string) error {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	v, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex %q: %w", s, err)
	}
	*b = v
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *HexBytes) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}
