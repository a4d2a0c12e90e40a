package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "uartsync.toml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Validate())
	l, err := c.Layout()
	require.NoError(t, err)
	require.Equal(t, 12, l.FrameLen())
	// 2 header bytes at 10 bits each on 115200 baud
	require.Equal(t, 173611*time.Nanosecond, c.ReadWindow())
	c.ReadGuard = false
	require.Zero(t, c.ReadWindow())

	c.Header[0] = 0
	require.Equal(t, byte(0xaa), Default().Header[0])
}

func TestFlags(t *testing.T) {
	c := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	SetupFlagSet(fs, c)
	require.NoError(t, fs.Parse([]string{
		"-device", "/dev/ttyACM0",
		"-baud", "921600",
		"-header", "0x7E:81",
		"-crc", "CRC-32",
		"-data-len", "16",
		"-liveness", "250ms",
	}))
	require.Equal(t, "/dev/ttyACM0", c.Serial.Device)
	require.Equal(t, 921600, c.Serial.Baud)
	require.Equal(t, HexBytes{0x7e, 0x81}, c.Header)
	require.Equal(t, "CRC-32", c.CRC)
	require.Equal(t, 16, c.DataLen)
	require.Equal(t, 250*time.Millisecond, c.Liveness)
	require.NoError(t, c.Validate())
	require.Equal(t, "7e81", c.Header.String())

	require.Error(t, fs.Parse([]string{"-header", "xyz"}))
}

func TestLoadFile(t *testing.T) {
	fn := writeFile(t, `
device = "/dev/ttyS1"
baud = 57600
parity = "Even"
read_timeout = "20ms"
header = "a5 5a"
data_len = 4
crc = "CRC-8"
liveness = "1s"
read_guard = false
broker = "mqtt://broker:1883/lab/"
stats_interval = "10s"
listen = ":9000"
device_id = "bench-1"
`)
	c := NewConfig()
	require.NoError(t, c.LoadFile(fn, nil))
	require.Equal(t, "/dev/ttyS1", c.Serial.Device)
	require.Equal(t, 57600, c.Serial.Baud)
	require.Equal(t, "Even", c.Serial.Parity)
	require.Equal(t, 20*time.Millisecond, c.Serial.ReadTimeout)
	require.Equal(t, HexBytes{0xa5, 0x5a}, c.Header)
	require.Equal(t, 4, c.DataLen)
	require.Equal(t, "CRC-8", c.CRC)
	require.Equal(t, time.Second, c.Liveness)
	require.False(t, c.ReadGuard)
	require.Equal(t, "mqtt://broker:1883/lab/", c.BrokerURL)
	require.Equal(t, 10*time.Second, c.StatsInterval)
	require.Equal(t, ":9000", c.ListenAddr)
	require.Equal(t, "bench-1", c.ClientID())
	require.NoError(t, c.Validate())
}

func TestLoadFileSkipsFlags(t *testing.T) {
	fn := writeFile(t, "baud = 9600\ndata_len = 32\n")
	c := NewConfig()
	require.NoError(t, c.LoadFile(fn, func(key string) bool { return key == "data-len" }))
	require.Equal(t, 9600, c.Serial.Baud)
	require.Equal(t, 8, c.DataLen)
}

func TestLoadFileErrors(t *testing.T) {
	c := NewConfig()
	require.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "missing.toml"), nil))
	require.Error(t, c.LoadFile(writeFile(t, `baud = "fast"`), nil))
	require.Error(t, c.LoadFile(writeFile(t, `liveness = "soon"`), nil))
	require.Error(t, c.LoadFile(writeFile(t, `colour = "blue"`), nil))
	require.Error(t, c.LoadFile(writeFile(t, `header = "zz"`), nil))
}

func TestValidate(t *testing.T) {
	testCases := []func(*Config){
		func(c *Config) { c.Serial.Baud = 0 },
		func(c *Config) { c.Header = nil },
		func(c *Config) { c.CRC = "CRC-7" },
		func(c *Config) { c.DataLen = 0; c.CRC = "" },
		func(c *Config) { c.Liveness = 0 },
		func(c *Config) { c.StatsInterval = -time.Second },
	}
	for i, mutate := range testCases {
		c := NewConfig()
		mutate(c)
		require.Error(t, c.Validate(), "case %d", i)
	}
}

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.True(t, len(id) <= 12)
	require.Equal(t, id, MachineID())
}
