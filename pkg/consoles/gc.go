package consoles

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// GameCube disc header layout
const (
	GC_HEADER_SIZE           = 0x0440
	GC_GAME_CODE_OFFSET      = 0x0000
	GC_GAME_CODE_SIZE        = 4
	GC_MAKER_CODE_OFFSET     = 0x0004
	GC_MAKER_CODE_SIZE       = 2
	GC_DISK_ID_OFFSET        = 0x0006
	GC_VERSION_OFFSET        = 0x0007
	GC_MAGIC_OFFSET          = 0x001C
	GC_MAGIC_SCAN_END        = 0x0100
	GC_INTERNAL_TITLE_OFFSET = 0x0020
	GC_INTERNAL_TITLE_SIZE   = 0x03E0
	GC_DOL_OFFSET            = 0x0420
	GC_FST_OFFSET            = 0x0424
	GC_FST_SIZE_OFFSET       = 0x0428
	GC_MAX_FST_SIZE_OFFSET   = 0x042C

	// Apploader header, directly after boot.bin and bi2.bin
	GC_APPLOADER_OFFSET       = 0x2440
	GC_APPLOADER_DATE_SIZE    = 10
	GC_APPLOADER_ENTRY_OFFSET = 0x2450
	GC_APPLOADER_SIZE_OFFSET  = 0x2454
	GC_APPLOADER_TRLR_OFFSET  = 0x2458
	GC_READ_SIZE              = 0x2460
)

var gcMagicWord = []byte{0xC2, 0x33, 0x9F, 0x3D}

// findGCMagic scans the start of a disc image for the boot magic word
func findGCMagic(data []byte) int {
	return findMagic(data, gcMagicWord, 0, GC_MAGIC_SCAN_END)
}

// DecodeGC extracts header fields from a GameCube disc image. Apploader
// fields are included when enough of the image is present.
func DecodeGC(data []byte) (*Record, error) {
	if len(data) < GC_HEADER_SIZE {
		return nil, fmt.Errorf("%w: file smaller than disc header", ErrInvalidROM)
	}
	if !bytes.Equal(data[GC_MAGIC_OFFSET:GC_MAGIC_OFFSET+4], gcMagicWord) {
		return nil, fmt.Errorf("%w: missing boot magic word", ErrInvalidROM)
	}

	rec := NewRecord()
	rec.Set("ID", common.CleanString(data[GC_GAME_CODE_OFFSET:GC_GAME_CODE_OFFSET+GC_GAME_CODE_SIZE]))
	rec.Set("maker_code", common.CleanString(data[GC_MAKER_CODE_OFFSET:GC_MAKER_CODE_OFFSET+GC_MAKER_CODE_SIZE]))
	rec.Set("disk_ID", fmt.Sprintf("%d", data[GC_DISK_ID_OFFSET]))
	rec.Set("version", fmt.Sprintf("%d", data[GC_VERSION_OFFSET]))
	rec.Set("internal_title", common.CleanString(data[GC_INTERNAL_TITLE_OFFSET:GC_INTERNAL_TITLE_OFFSET+GC_INTERNAL_TITLE_SIZE]))
	rec.Set("dol_offset", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_DOL_OFFSET)))
	rec.Set("fst_offset", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_FST_OFFSET)))
	rec.Set("fst_size", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_FST_SIZE_OFFSET)))
	rec.Set("max_fst_size", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_MAX_FST_SIZE_OFFSET)))

	if len(data) >= GC_READ_SIZE {
		date := common.CleanString(data[GC_APPLOADER_OFFSET : GC_APPLOADER_OFFSET+GC_APPLOADER_DATE_SIZE])
		rec.Set("apploader_date", strings.ReplaceAll(date, "/", "-"))
		rec.Set("apploader_entry_point", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_APPLOADER_ENTRY_OFFSET)))
		rec.Set("apploader_code_size", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_APPLOADER_SIZE_OFFSET)))
		rec.Set("apploader_trailer_size", fmt.Sprintf("%d", common.ReadUint32BE(data, GC_APPLOADER_TRLR_OFFSET)))
	}
	return rec, nil
}

// ValidateGC reports whether the header carries the boot magic word
func ValidateGC(data []byte) bool {
	if len(data) < GC_MAGIC_OFFSET+4 {
		return false
	}
	return bytes.Equal(data[GC_MAGIC_OFFSET:GC_MAGIC_OFFSET+4], gcMagicWord)
}

func identifyGC(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readHead(path, GC_READ_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeGC(data)
	if err != nil {
		return nil, err
	}
	if id := rec.Get("ID"); id != "" {
		if entry, ok := db.Lookup("GC", id); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "internal_title")
	return rec, nil
}
