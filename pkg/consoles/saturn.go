package consoles

import (
	"fmt"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Sega Saturn header layout, offsets relative to the magic word
const (
	SATURN_MAGIC_SCAN_END   = 0x100
	SATURN_HEADER_READ_SIZE = 0x200
	SATURN_HEADER_MIN_SIZE  = 0xD0
)

var saturnMagicWord = []byte("SEGA SEGASATURN")

var saturnDeviceSupport = map[byte]string{
	'J': "Control Pad",
	'M': "Mouse",
	'G': "Gun",
	'W': "RAM Cart",
	'S': "Steering Wheel",
	'A': "Virtua Stick or Analog Controller",
	'E': "Analog Controller (3D-pad)",
	'T': "Multi-Tap",
	'C': "Link Cable",
	'D': "Link Cable (Direct Link)",
	'X': "X-Band or Netlink Modem",
	'K': "Keyboard",
	'Q': "Pachinko Controller",
	'F': "Floppy Disk Drive",
	'R': "ROM Cart",
	'P': "Video CD Card (MPEG Movie Card)",
}

var saturnTargetAreas = map[byte]string{
	'J': "Japan",
	'T': "Asia NTSC (Taiwan, Philippines)",
	'U': "North America (USA, Canada)",
	'B': "Central and South America NTSC (Brazil)",
	'K': "Korea",
	'A': "East Asia PAL (China, Middle and Near East)",
	'E': "Europe PAL",
	'L': "Central and South America PAL",
}

// findSaturnMagic scans the first sector for the system string
func findSaturnMagic(data []byte) int {
	pos := findMagic(data, saturnMagicWord, 0, SATURN_MAGIC_SCAN_END)
	if pos >= 0 {
		common.LogDebug(common.DebugMagicWordFound, string(saturnMagicWord), pos)
	}
	return pos
}

// saturnCodeList decodes single-letter codes into a slash-joined list,
// keeping the on-disc ordering
func saturnCodeList(data []byte, table map[byte]string) string {
	var names []string
	for _, b := range data {
		if b == 0 || b == ' ' {
			continue
		}
		if name, ok := table[b]; ok {
			names = append(names, name)
		} else if b >= 0x20 && b <= 0x7E {
			names = append(names, string(b))
		}
	}
	return strings.Join(names, " / ")
}

// DecodeSaturn extracts header fields from the first sector of a Saturn
// disc image
func DecodeSaturn(data []byte) (*Record, error) {
	offset := findSaturnMagic(data)
	if offset < 0 {
		return nil, fmt.Errorf("%w: system string not found", ErrInvalidROM)
	}
	if len(data) < offset+SATURN_HEADER_MIN_SIZE {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidROM)
	}

	productID := strings.TrimSpace(string(data[offset+0x20 : offset+0x2A]))
	if parts := strings.Fields(productID); len(parts) > 0 {
		productID = parts[0]
	}

	releaseDate := strings.TrimSpace(string(data[offset+0x30 : offset+0x38]))
	if len(releaseDate) == 8 {
		// YYYYMMDD on disc, reformatted to YYYY-MM-DD
		releaseDate = fmt.Sprintf("%s-%s-%s", releaseDate[0:4], releaseDate[4:6], releaseDate[6:8])
	}

	rec := NewRecord()
	rec.Set("manufacturer_ID", strings.TrimSpace(string(data[offset+0x10:offset+0x20])))
	rec.Set("ID", productID)
	rec.Set("version", strings.TrimSpace(string(data[offset+0x2A:offset+0x30])))
	rec.Set("release_date", releaseDate)
	rec.Set("device_info", strings.TrimSpace(string(data[offset+0x38:offset+0x40])))
	rec.Set("target_area", saturnCodeList(data[offset+0x40:offset+0x50], saturnTargetAreas))
	rec.Set("device_support", saturnCodeList(data[offset+0x50:offset+0x60], saturnDeviceSupport))
	rec.Set("internal_title", common.CleanString(data[offset+0x60:offset+0xD0]))
	return rec, nil
}

func identifySaturn(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readDiscHeader(path, SATURN_HEADER_READ_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeSaturn(data)
	if err != nil {
		return nil, err
	}
	serial := strings.ReplaceAll(rec.Get("ID"), "-", "")
	serial = strings.TrimSpace(strings.ReplaceAll(serial, " ", ""))
	if serial != "" {
		if entry, ok := db.Lookup("Saturn", serial); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "internal_title")
	return rec, nil
}
