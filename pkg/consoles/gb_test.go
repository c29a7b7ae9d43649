package consoles

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// buildGBROM builds a 32 KiB dump with a consistent header and returns it
// with its global checksum
func buildGBROM(t *testing.T) ([]byte, uint16) {
	t.Helper()
	data := make([]byte, 0x8000)
	copy(data[GB_LOGO_OFFSET:], gbLogo)
	copy(data[GB_TITLE_OFFSET:], "TETRIS")
	data[GB_SGB_FLAG_OFFSET] = 0x03
	data[GB_CART_TYPE_OFFSET] = 0x03
	data[GB_ROM_SIZE_OFFSET] = 0x00
	data[GB_RAM_SIZE_OFFSET] = 0x02
	data[GB_OLD_LICENSEE_OFFSET] = 0x01
	data[GB_ROM_VERSION_OFFSET] = 1

	checksum := uint8(0)
	for i := GB_TITLE_OFFSET; i < GB_HEADER_CHECKSUM_OFFSET; i++ {
		checksum = checksum - data[i] - 1
	}
	data[GB_HEADER_CHECKSUM_OFFSET] = checksum

	var global uint16
	for i, b := range data {
		if i != GB_GLOBAL_CHECKSUM_OFFSET && i != GB_GLOBAL_CHECKSUM_OFFSET+1 {
			global += uint16(b)
		}
	}
	data[GB_GLOBAL_CHECKSUM_OFFSET] = byte(global >> 8)
	data[GB_GLOBAL_CHECKSUM_OFFSET+1] = byte(global)
	return data, global
}

func TestDecodeGB(t *testing.T) {
	data, global := buildGBROM(t)
	rec, key, err := decodeGB(data)
	if err != nil {
		t.Fatalf("decodeGB() failed: %v", err)
	}

	expected := map[string]string{
		"internal_title": "TETRIS",
		"cgb_mode":       "GB",
		"sgb_support":    "true",
		"cartridge_type": "MBC1 + RAM + Battery",
		"rom_size":       "32768",
		"rom_banks":      "2",
		"ram_size":       "8192",
		"ram_banks":      "1",
		"licensee":       "Nintendo",
		"rom_version":    "1",
	}
	for field, want := range expected {
		if got := rec.Get(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	if rec.Get("header_checksum_expected") != rec.Get("header_checksum_actual") {
		t.Errorf("header checksum mismatch: %s vs %s",
			rec.Get("header_checksum_expected"), rec.Get("header_checksum_actual"))
	}
	if rec.Get("global_checksum_expected") != rec.Get("global_checksum_actual") {
		t.Errorf("global checksum mismatch: %s vs %s",
			rec.Get("global_checksum_expected"), rec.Get("global_checksum_actual"))
	}
	if want := gamedb.KeyGB("TETRIS", global); key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}

func TestDecodeGB_CorruptLogo(t *testing.T) {
	data, _ := buildGBROM(t)
	data[GB_LOGO_OFFSET] ^= 0xFF

	rec, _, err := decodeGB(data)
	if err != nil {
		t.Fatalf("decodeGB() should tolerate a corrupted logo: %v", err)
	}
	if got := rec.Get("internal_title"); got != "TETRIS" {
		t.Errorf("internal_title = %q, want %q", got, "TETRIS")
	}
	for _, field := range []string{
		"header_checksum_expected", "header_checksum_actual",
		"global_checksum_expected", "global_checksum_actual",
	} {
		if !rec.Has(field) {
			t.Errorf("record should still carry %s", field)
		}
	}
}

func TestDecodeGB_CGBFlags(t *testing.T) {
	testCases := []struct {
		name     string
		flag     byte
		expected string
	}{
		{"plain", 0x00, "GB"},
		{"dual", 0x80, "GBC (supports GB)"},
		{"color_only", 0xC0, "GBC only"},
		{"pgb", 0x04, "PGB"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, _ := buildGBROM(t)
			data[GB_CGB_FLAG_OFFSET] = tc.flag
			rec, err := DecodeGB(data)
			if err != nil {
				t.Fatalf("DecodeGB() failed: %v", err)
			}
			if got := rec.Get("cgb_mode"); got != tc.expected {
				t.Errorf("cgb_mode = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestDecodeGB_ManufacturerCode(t *testing.T) {
	data, _ := buildGBROM(t)
	copy(data[GB_TITLE_OFFSET:], "ZELDA DX   ")
	copy(data[GB_MANUFACTURER_OFFSET:], "AZLE")
	rec, err := DecodeGB(data)
	if err != nil {
		t.Fatalf("DecodeGB() failed: %v", err)
	}
	if got := rec.Get("manufacturer_code"); got != "AZLE" {
		t.Errorf("manufacturer_code = %q, want %q", got, "AZLE")
	}
	if got := rec.Get("internal_title"); got != "ZELDA DX" {
		t.Errorf("internal_title = %q, want %q", got, "ZELDA DX")
	}
}

func TestDecodeGB_TooSmall(t *testing.T) {
	if _, err := DecodeGB(make([]byte, 0x100)); err == nil {
		t.Error("DecodeGB() should reject data smaller than the header")
	}
}

func TestValidateGB(t *testing.T) {
	data, _ := buildGBROM(t)
	if !ValidateGB(data) {
		t.Error("ValidateGB() should accept a dump with an intact logo")
	}
	data[GB_LOGO_OFFSET] ^= 0xFF
	if ValidateGB(data) {
		t.Error("ValidateGB() should reject a corrupted logo")
	}
}

func TestIdentifyGB(t *testing.T) {
	data, global := buildGBROM(t)
	path := filepath.Join(t.TempDir(), "tetris.gb")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	db := gamedb.New()
	db.Consoles["GB_GBC"] = map[string]gamedb.Entry{
		gamedb.KeyGB("TETRIS", global): {"title": "Tetris", "region": "World"},
	}

	rec, err := identifyGB(path, db, Options{})
	if err != nil {
		t.Fatalf("identifyGB() failed: %v", err)
	}
	if got := rec.Get("title"); got != "Tetris" {
		t.Errorf("title = %q, want %q", got, "Tetris")
	}
	if got := rec.Get("region"); got != "World" {
		t.Errorf("region = %q, want %q", got, "World")
	}
}

func TestIdentifyGB_Gzipped(t *testing.T) {
	data, _ := buildGBROM(t)
	path := filepath.Join(t.TempDir(), "tetris.gb.gz")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(file)
	if _, err := gz.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	rec, err := identifyGB(path, gamedb.New(), Options{})
	if err != nil {
		t.Fatalf("identifyGB() failed on gzipped dump: %v", err)
	}
	if got := rec.Get("internal_title"); got != "TETRIS" {
		t.Errorf("internal_title = %q, want %q", got, "TETRIS")
	}
	if got := rec.Get("title"); got != "TETRIS" {
		t.Errorf("title should fall back to the internal title, got %q", got)
	}
}
