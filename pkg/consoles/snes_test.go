package consoles

import (
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// buildSNESROM builds a 64 KiB dump with a valid LoROM header
func buildSNESROM(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, 0x10000)
	start := SNES_LOROM_HEADER_START
	copy(data[start:], "SUPER TEST GAME      ")
	data[start+SNES_MAP_MODE_OFFSET] = 0x30    // FastROM, LoROM
	data[start+SNES_ROM_TYPE_OFFSET] = 0x02    // ROM + RAM + Battery
	data[start+SNES_DEVELOPER_ID_OFFSET] = 0x01
	data[start+SNES_ROM_VERSION_OFFSET] = 0x00
	// checksum 0x1234 and its complement, little-endian
	data[start+SNES_CHECKSUM_OFFSET] = 0x34
	data[start+SNES_CHECKSUM_OFFSET+1] = 0x12
	data[start+SNES_CHECKSUM_COMPLEMENT_START] = 0xCB
	data[start+SNES_CHECKSUM_COMPLEMENT_START+1] = 0xED
	return data
}

func TestDecodeSNES(t *testing.T) {
	rec, key, name, err := decodeSNES(buildSNESROM(t))
	if err != nil {
		t.Fatalf("decodeSNES() failed: %v", err)
	}
	if name != "SUPER TEST GAME" {
		t.Errorf("printable name = %q", name)
	}
	expected := map[string]string{
		"fast_slow_rom": "FastROM",
		"rom_type":      "LoROM",
		"developer_ID":  "0x01",
		"rom_version":   "0",
		"checksum":      "0x1234",
		"hardware":      "ROM + RAM + Battery",
	}
	for field, want := range expected {
		if got := rec.Get(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	nameHex := rec.Get("internal_title")
	if want := gamedb.KeySNES(1, nameHex, 0, 0x1234); key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}

func TestDecodeSNES_CopierHeader(t *testing.T) {
	plain := buildSNESROM(t)
	withCopier := append(make([]byte, SNES_COPIER_HEADER_SIZE), plain...)

	recPlain, err := DecodeSNES(plain)
	if err != nil {
		t.Fatalf("DecodeSNES() failed on plain dump: %v", err)
	}
	recCopier, err := DecodeSNES(withCopier)
	if err != nil {
		t.Fatalf("DecodeSNES() failed on copier dump: %v", err)
	}
	for _, field := range []string{"internal_title", "checksum", "rom_type"} {
		if recPlain.Get(field) != recCopier.Get(field) {
			t.Errorf("%s differs: %q vs %q", field, recPlain.Get(field), recCopier.Get(field))
		}
	}
}

func TestDecodeSNES_MapModes(t *testing.T) {
	testCases := []struct {
		name    string
		mapMode byte
		speed   string
		layout  string
	}{
		{"slow_lorom", 0x20, "SlowROM", "LoROM"},
		{"fast_hirom", 0x31, "FastROM", "HiROM"},
		{"exhirom", 0x25, "SlowROM", "ExHiROM"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			speed, layout := snesMapModeString(tc.mapMode)
			if speed != tc.speed || layout != tc.layout {
				t.Errorf("snesMapModeString(0x%02X) = %q, %q, want %q, %q",
					tc.mapMode, speed, layout, tc.speed, tc.layout)
			}
		})
	}
}

func TestSNESHardware_Coprocessor(t *testing.T) {
	data := buildSNESROM(t)
	// SA-1 cartridge with RAM
	got := snesHardware(0x34, data, SNES_LOROM_HEADER_START)
	if got != "ROM + Coprocessor (SA-1) + RAM" {
		t.Errorf("hardware = %q", got)
	}
	// Extended chip byte lives right before the header
	data[SNES_LOROM_HEADER_START-1] = 0x03
	got = snesHardware(0xF3, data, SNES_LOROM_HEADER_START)
	if got != "ROM + Coprocessor (CX4)" {
		t.Errorf("hardware = %q", got)
	}
}

func TestValidateSNES(t *testing.T) {
	if !ValidateSNES(buildSNESROM(t)) {
		t.Error("ValidateSNES() should accept a checksum-consistent header")
	}
	if ValidateSNES(make([]byte, 0x10000)) {
		t.Error("ValidateSNES() should reject a dump with no valid header")
	}
}
