package consoles

import (
	"bytes"
	"fmt"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Game Boy Advance header layout
const (
	GBA_HEADER_SIZE       = 192
	GBA_LOGO_OFFSET       = 0x04
	GBA_LOGO_SIZE         = 156
	GBA_TITLE_OFFSET      = 0xA0
	GBA_TITLE_SIZE        = 12
	GBA_GAME_CODE_OFFSET  = 0xAC
	GBA_GAME_CODE_SIZE    = 4
	GBA_MAKER_CODE_OFFSET = 0xB0
	GBA_MAKER_CODE_SIZE   = 2
	GBA_MAIN_UNIT_OFFSET  = 0xB3
	GBA_DEVICE_OFFSET     = 0xB4
	GBA_VERSION_OFFSET    = 0xBC
)

// Compressed boot logo, present in every licensed cartridge
var gbaLogo = []byte{
	0x24, 0xFF, 0xAE, 0x51, 0x69, 0x9A, 0xA2, 0x21, 0x3D, 0x84, 0x82, 0x0A,
	0x84, 0xE4, 0x09, 0xAD, 0x11, 0x24, 0x8B, 0x98, 0xC0, 0x81, 0x7F, 0x21,
	0xA3, 0x52, 0xBE, 0x19, 0x93, 0x09, 0xCE, 0x20, 0x10, 0x46, 0x4A, 0x4A,
	0xF8, 0x27, 0x31, 0xEC, 0x58, 0xC7, 0xE8, 0x33, 0x82, 0xE3, 0xCE, 0xBF,
	0x85, 0xF4, 0xDF, 0x94, 0xCE, 0x4B, 0x09, 0xC1, 0x94, 0x56, 0x8A, 0xC0,
	0x13, 0x72, 0xA7, 0xFC, 0x9F, 0x84, 0x4D, 0x73, 0xA3, 0xCA, 0x9A, 0x61,
	0x58, 0x97, 0xA3, 0x27, 0xFC, 0x03, 0x98, 0x76, 0x23, 0x1D, 0xC7, 0x61,
	0x03, 0x04, 0xAE, 0x56, 0xBF, 0x38, 0x84, 0x00, 0x40, 0xA7, 0x0E, 0xFD,
	0xFF, 0x52, 0xFE, 0x03, 0x6F, 0x95, 0x30, 0xF1, 0x97, 0xFB, 0xC0, 0x85,
	0x60, 0xD6, 0x80, 0x25, 0xA9, 0x63, 0xBE, 0x03, 0x01, 0x4E, 0x38, 0xE2,
	0xF9, 0xA2, 0x34, 0xFF, 0xBB, 0x3E, 0x03, 0x44, 0x78, 0x00, 0x90, 0xCB,
	0x88, 0x11, 0x3A, 0x94, 0x65, 0xC0, 0x7C, 0x63, 0x87, 0xF0, 0x3C, 0xAF,
	0xD6, 0x25, 0xE4, 0x8B, 0x38, 0x0A, 0xAC, 0x72, 0x21, 0xD4, 0xF8, 0x07,
}

// DecodeGBA extracts header fields from a Game Boy Advance dump
func DecodeGBA(data []byte) (*Record, error) {
	if len(data) < GBA_HEADER_SIZE {
		return nil, fmt.Errorf("%w: file smaller than cartridge header", ErrInvalidROM)
	}

	if !bytes.Equal(data[GBA_LOGO_OFFSET:GBA_LOGO_OFFSET+GBA_LOGO_SIZE], gbaLogo) {
		common.LogWarn(common.WarnInvalidLogo)
	}

	rec := NewRecord()
	rec.Set("ID", common.ExtractPrintable(data[GBA_GAME_CODE_OFFSET:GBA_GAME_CODE_OFFSET+GBA_GAME_CODE_SIZE]))
	rec.Set("internal_title", common.ExtractPrintable(data[GBA_TITLE_OFFSET:GBA_TITLE_OFFSET+GBA_TITLE_SIZE]))
	rec.Set("maker_code", common.ExtractPrintable(data[GBA_MAKER_CODE_OFFSET:GBA_MAKER_CODE_OFFSET+GBA_MAKER_CODE_SIZE]))
	rec.Set("main_unit_code", fmt.Sprintf("0x%02X", data[GBA_MAIN_UNIT_OFFSET]))
	rec.Set("device_type", fmt.Sprintf("0x%02X", data[GBA_DEVICE_OFFSET]))
	rec.Set("software_version", fmt.Sprintf("%d", data[GBA_VERSION_OFFSET]))
	return rec, nil
}

// ValidateGBA reports whether the header carries the boot logo
func ValidateGBA(data []byte) bool {
	if len(data) < GBA_HEADER_SIZE {
		return false
	}
	return bytes.Equal(data[GBA_LOGO_OFFSET:GBA_LOGO_OFFSET+GBA_LOGO_SIZE], gbaLogo)
}

func identifyGBA(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readHead(path, GBA_HEADER_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeGBA(data)
	if err != nil {
		return nil, err
	}
	if id := rec.Get("ID"); id != "" {
		if entry, ok := db.Lookup("GBA", id); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "internal_title")
	return rec, nil
}
