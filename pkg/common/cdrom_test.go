// Package common provides tests for CD-ROM utility functions
package common

import (
	"testing"
)

func TestLBAToMSF(t *testing.T) {
	testCases := []struct {
		name     string
		lba      uint32
		expected string
	}{
		{"lba zero maps to pregap", 0, "00:02:00"},
		{"first data sector", 16, "00:02:16"},
		{"one minute", 4350, "01:00:00"},
		{"arbitrary sector", 123456, "27:28:06"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := LBAToMSF(tc.lba); result != tc.expected {
				t.Errorf("LBAToMSF(%d) = %s, want %s", tc.lba, result, tc.expected)
			}
		})
	}
}

func TestCleanFileName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"version suffix", "SLUS_012.34;1", "SLUS_012.34"},
		{"no suffix", "SYSTEM.CNF", "SYSTEM.CNF"},
		{"digit without semicolon", "TRACK01", "TRACK01"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := CleanFileName(tc.input); result != tc.expected {
				t.Errorf("CleanFileName(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestIsSpecialDirEntry(t *testing.T) {
	if !IsSpecialDirEntry("\x00") {
		t.Error("IsSpecialDirEntry(\\x00) should be true")
	}
	if !IsSpecialDirEntry("\x01") {
		t.Error("IsSpecialDirEntry(\\x01) should be true")
	}
	if IsSpecialDirEntry("README.TXT") {
		t.Error("IsSpecialDirEntry(README.TXT) should be false")
	}
}

func TestExtractFromDirRecord(t *testing.T) {
	record := make([]byte, 34)
	record[0] = 34
	// LBA 0x000000AA little-endian at offset 2
	record[2] = 0xAA
	// size 0x00001000 little-endian at offset 10
	record[11] = 0x10

	if lba := ExtractLBAFromDirRecord(record); lba != 0xAA {
		t.Errorf("ExtractLBAFromDirRecord() = %d, want %d", lba, 0xAA)
	}
	if size := ExtractSizeFromDirRecord(record); size != 0x1000 {
		t.Errorf("ExtractSizeFromDirRecord() = %d, want %d", size, 0x1000)
	}

	if lba := ExtractLBAFromDirRecord([]byte{1, 2}); lba != 0 {
		t.Errorf("short record should yield 0, got %d", lba)
	}
}
