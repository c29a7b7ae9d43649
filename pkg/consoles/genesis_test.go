package consoles

import (
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// buildGenesisROM builds a header-only dump with the system name at 0x100
func buildGenesisROM(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, GENESIS_HEADER_READ_SIZE)
	for i := 0x100; i < 0x200; i++ {
		data[i] = ' '
	}
	base := 0x100
	copy(data[base:], "SEGA GENESIS")
	copy(data[base+0x13:], "SEGA")
	copy(data[base+0x18:], "1992")
	copy(data[base+0x1D:], "NOV")
	copy(data[base+0x20:], "SONIC THE HEDGEHOG 2")
	copy(data[base+0x50:], "SONIC THE HEDGEHOG 2")
	copy(data[base+0x80:], "GM")
	copy(data[base+0x82:], "MK-1051")
	copy(data[base+0x8C:], "00")
	data[base+0x8E] = 0xAB
	data[base+0x8F] = 0xCD
	copy(data[base+0x90:], "J6")
	copy(data[base+0xF0:], "JUE")
	return data
}

func TestDecodeGenesis(t *testing.T) {
	rec, err := DecodeGenesis(buildGenesisROM(t))
	if err != nil {
		t.Fatalf("DecodeGenesis() failed: %v", err)
	}
	expected := map[string]string{
		"system_type":    "SEGA GENESIS",
		"publisher":      "SEGA",
		"release_year":   "1992",
		"release_month":  "November",
		"title_domestic": "SONIC THE HEDGEHOG 2",
		"title_overseas": "SONIC THE HEDGEHOG 2",
		"software_type":  "Game",
		"ID":             "MK-1051",
		"checksum":       "0xABCD",
		"device_support": "3-button Controller / 6-button Controller",
		"region_support": "Americas / Europe / Japan",
	}
	for field, want := range expected {
		if got := rec.Get(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
}

func TestDecodeGenesis_NoMagic(t *testing.T) {
	if _, err := DecodeGenesis(make([]byte, GENESIS_HEADER_READ_SIZE)); err == nil {
		t.Error("DecodeGenesis() should reject data without a system name")
	}
}

func TestGenesisSerialLookup(t *testing.T) {
	db := gamedb.New()
	db.Consoles["Genesis"] = map[string]gamedb.Entry{
		"MK1051": {"title": "Sonic The Hedgehog 2", "region": "NTSC-U"},
	}

	data := buildGenesisROM(t)
	path := writeROMFile(t, "sonic2.32x", data)
	rec, err := identifyGenesis(path, db, Options{})
	if err != nil {
		t.Fatalf("identifyGenesis() failed: %v", err)
	}
	if got := rec.Get("title"); got != "Sonic The Hedgehog 2" {
		t.Errorf("title = %q, want database title", got)
	}
}
