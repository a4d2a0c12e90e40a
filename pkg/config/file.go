package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Device        string   `toml:"device"`
	Baud          int      `toml:"baud"`
	DataBits      int      `toml:"databits"`
	Parity        string   `toml:"parity"`
	StopBits      string   `toml:"stopbits"`
	ReadTimeout   string   `toml:"read_timeout"`
	Header        HexBytes `toml:"header"`
	DataLen       int      `toml:"data_len"`
	CRC           string   `toml:"crc"`
	Liveness      string   `toml:"liveness"`
	ReadGuard     bool     `toml:"read_guard"`
	Broker        string   `toml:"broker"`
	StatsInterval string   `toml:"stats_interval"`
	Listen        string   `toml:"listen"`
	DeviceID      string   `toml:"device_id"`
}

// LoadFile applies the TOML file at path onto c. Keys for which skip
// returns true are ignored. skip receives the flag name of the key.
func (c *Config) LoadFile(path string, skip func(key string) bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	defined := func(key string) bool {
		if !meta.IsDefined(key) {
			return false
		}
		return skip == nil || !skip(strings.ReplaceAll(key, "_", "-"))
	}
	duration := func(key, val string, out *time.Duration) error {
		if !defined(key) {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*out = d
		return nil
	}

	if defined("device") {
		c.Serial.Device = strings.TrimSpace(raw.Device)
	}
	if defined("baud") {
		c.Serial.Baud = raw.Baud
	}
	if defined("databits") {
		c.Serial.DataBits = raw.DataBits
	}
	if defined("parity") {
		c.Serial.Parity = strings.TrimSpace(raw.Parity)
	}
	if defined("stopbits") {
		c.Serial.StopBits = strings.TrimSpace(raw.StopBits)
	}
	if err := duration("read_timeout", raw.ReadTimeout, &c.Serial.ReadTimeout); err != nil {
		return err
	}
	if defined("header") {
		c.Header = raw.Header
	}
	if defined("data_len") {
		c.DataLen = raw.DataLen
	}
	if defined("crc") {
		c.CRC = strings.TrimSpace(raw.CRC)
	}
	if err := duration("liveness", raw.Liveness, &c.Liveness); err != nil {
		return err
	}
	if defined("read_guard") {
		c.ReadGuard = raw.ReadGuard
	}
	if defined("broker") {
		c.BrokerURL = strings.TrimSpace(raw.Broker)
	}
	if err := duration("stats_interval", raw.StatsInterval, &c.StatsInterval); err != nil {
		return err
	}
	if defined("listen") {
		c.ListenAddr = strings.TrimSpace(raw.Listen)
	}
	if defined("device_id") {
		c.DeviceID = strings.TrimSpace(raw.DeviceID)
	}
	return nil
}
