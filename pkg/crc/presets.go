package crc

import (
	"fmt"
	"sort"
	"strings"
)

// Catalogue configurations. Check values are taken over ASCII "123456789".
var (
	// CRC8 is CRC-8 as used by ATM HEC and SMBus.
	CRC8 = Params[uint8]{Width: 8, Poly: 0x07, Init: 0x00, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xf4, Name: "CRC-8"}
	// CRC8Maxim is the Dallas/Maxim 1-Wire CRC.
	CRC8Maxim = Params[uint8]{Width: 8, Poly: 0x31, Init: 0x00, RefIn: true, RefOut: true, XorOut: 0x00, Check: 0xa1, Name: "CRC-8/MAXIM"}
	// CRC16Modbus is the Modbus RTU CRC.
	CRC16Modbus = Params[uint16]{Width: 16, Poly: 0x8005, Init: 0xffff, RefIn: true, RefOut: true, XorOut: 0x0000, Check: 0x4b37, Name: "CRC-16/MODBUS"}
	// CRC16CCITTFalse is the unreflected CCITT variant starting from 0xffff.
	CRC16CCITTFalse = Params[uint16]{Width: 16, Poly: 0x1021, Init: 0xffff, RefIn: false, RefOut: false, XorOut: 0x0000, Check: 0x29b1, Name: "CRC-16/CCITT-FALSE"}
	// CRC24OpenPGP is the OpenPGP armor checksum.
	CRC24OpenPGP = Params[uint32]{Width: 24, Poly: 0x864cfb, Init: 0xb704ce, RefIn: false, RefOut: false, XorOut: 0x000000, Check: 0x21cf02, Name: "CRC-24/OPENPGP"}
	// CRC32 is the Ethernet (ISO-HDLC) CRC.
	CRC32 = Params[uint32]{Width: 32, Poly: 0x04c11db7, Init: 0xffffffff, RefIn: true, RefOut: true, XorOut: 0xffffffff, Check: 0xcbf43926, Name: "CRC-32"}
	// CRC32C is the Castagnoli CRC.
	CRC32C = Params[uint32]{Width: 32, Poly: 0x1edc6f41, Init: 0xffffffff, RefIn: true, RefOut: true, XorOut: 0xffffffff, Check: 0xe3069283, Name: "CRC-32C"}
	// CRC64ECMA is the ECMA-182 CRC.
	CRC64ECMA = Params[uint64]{Width: 64, Poly: 0x42f0e1eba9ea3693, Init: 0x0000000000000000, RefIn: false, RefOut: false, XorOut: 0x0000000000000000, Check: 0x6c40df5f0b497347, Name: "CRC-64/ECMA-182"}
	// CRC64XZ is the reflected ECMA polynomial with inversion, as in hash/crc64.
	CRC64XZ = Params[uint64]{Width: 64, Poly: 0x42f0e1eba9ea3693, Init: 0xffffffffffffffff, RefIn: true, RefOut: true, XorOut: 0xffffffffffffffff, Check: 0x995dc9bbdf1939fa, Name: "CRC-64/XZ"}
)

// preset tables are built once and shared read-only.
var presets = []Checksummer{
	MakeTable(CRC8),
	MakeTable(CRC8Maxim),
	MakeTable(CRC16Modbus),
	MakeTable(CRC16CCITTFalse),
	MakeTable(CRC24OpenPGP),
	MakeTable(CRC32),
	MakeTable(CRC32C),
	MakeTable(CRC64ECMA),
	MakeTable(CRC64XZ),
}

var presetIndex = func() map[string]Checksummer {
	m := make(map[string]Checksummer, len(presets))
	for _, c := range presets {
		m[normalizeName(c.Name())] = c
	}
	return m
}()

// Presets lists the catalogue tables ordered by width then name.
func Presets() []Checksummer {
	list := make([]Checksummer, len(presets))
	copy(list, presets)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Width() != list[j].Width() {
			return list[i].Width() < list[j].Width()
		}
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Lookup finds a catalogue table by name, e.g. "crc-16/modbus" or "crc16modbus".
func Lookup(name string) (Checksummer, error) {
	if c, ok := presetIndex[normalizeName(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown crc %q", name)
}

func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '/', '_', ' ', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
