package common

import (
	"encoding/binary"
	"strings"
)

// ReadUint16LE reads a uint16 in little-endian format from data at offset
func ReadUint16LE(data []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(data) {
		return 0
	}
	return binary.LittleEndian.Uint16(data[offset : offset+2])
}

// ReadUint32LE reads a uint32 in little-endian format from data at offset
func ReadUint32LE(data []byte, offset int) uint32 {
	if offset < 0 || offset+4 > len(data) {
		return 0
	}
	return binary.LittleEndian.Uint32(data[offset : offset+4])
}

// ReadUint16BE reads a uint16 in big-endian format from data at offset
func ReadUint16BE(data []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(data) {
		return 0
	}
	return binary.BigEndian.Uint16(data[offset : offset+2])
}

// ReadUint32BE reads a uint32 in big-endian format from data at offset
func ReadUint32BE(data []byte, offset int) uint32 {
	if offset < 0 || offset+4 > len(data) {
		return 0
	}
	return binary.BigEndian.Uint32(data[offset : offset+4])
}

// IsPrintable reports whether every byte of data is printable ASCII
func IsPrintable(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// ExtractPrintable keeps only printable ASCII bytes from data and trims
// surrounding whitespace
func ExtractPrintable(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 0x20 && b <= 0x7E {
			sb.WriteByte(b)
		}
	}
	return strings.TrimSpace(sb.String())
}

// CleanString decodes a fixed-width field up to the first null byte and trims
// surrounding whitespace
func CleanString(data []byte) string {
	if idx := indexByte(data, 0x00); idx >= 0 {
		data = data[:idx]
	}
	return strings.TrimSpace(string(data))
}

// DecodeTrim decodes a fixed-width text field. Fields holding valid text are
// trimmed; anything else is returned as a raw byte string so callers never
// lose information.
func DecodeTrim(data []byte) string {
	for _, b := range data {
		if b != 0x00 && (b < 0x20 || b > 0x7E) {
			return string(data)
		}
	}
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}

func indexByte(data []byte, c byte) int {
	for i, b := range data {
		if b == c {
			return i
		}
	}
	return -1
}
