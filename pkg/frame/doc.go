// Package frame defines the fixed length frame carried on the line:
//
//	| header | data | checksum |
//
// The checksum covers the data bytes only and is stored little endian in
// Width/8 bytes of the configured CRC. A Decoder verifies payloads handed
// over by the receiver and forwards copies of valid data to a Sink.
package frame
