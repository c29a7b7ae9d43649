package consoles

import (
	"fmt"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Sega CD header layout, offsets relative to the magic word
const (
	SEGACD_MAGIC_SCAN_END   = 0x100
	SEGACD_HEADER_READ_SIZE = 0x400
	SEGACD_HEADER_MIN_SIZE  = 0x1F3
)

// Disc system strings that open a Sega CD header, longest first so
// SEGADISCSYSTEM is not shadowed by SEGADISC
var segaCDMagicWords = []string{
	"SEGADISCSYSTEM",
	"SEGABOOTDISC",
	"SEGADATADISC",
	"SEGADISC",
}

// findSegaCDMagic scans the first sector for a disc system string
func findSegaCDMagic(data []byte) int {
	for _, magic := range segaCDMagicWords {
		if pos := findMagic(data, []byte(magic), 0, SEGACD_MAGIC_SCAN_END); pos >= 0 {
			common.LogDebug(common.DebugMagicWordFound, magic, pos)
			return pos
		}
	}
	return -1
}

// parseSegaCDProductID splits the raw product field into disc kind, serial
// and version. The field looks like "GM MK-4402 -00" with several layout
// variants in the wild.
func parseSegaCDProductID(raw string) (kind, id, version string) {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 3:
		return strings.Trim(parts[0], "-"), strings.Trim(parts[1], "-"), strings.Trim(parts[2], "-")
	case 2:
		kind = parts[0]
		if strings.Count(parts[1], "-") >= 2 {
			if cut := strings.LastIndex(parts[1], "-"); cut > 0 && cut < len(parts[1])-1 {
				return kind, parts[1][:cut], parts[1][cut+1:]
			}
		}
		return kind, strings.Trim(parts[1], "-"), ""
	case 1:
		return "", parts[0], ""
	}
	return "", "", ""
}

// DecodeSegaCD extracts header fields from the first sector of a Sega CD
// disc image
func DecodeSegaCD(data []byte) (*Record, error) {
	offset := findSegaCDMagic(data)
	if offset < 0 {
		return nil, fmt.Errorf("%w: disc system string not found", ErrInvalidROM)
	}
	if len(data) < offset+SEGACD_HEADER_MIN_SIZE {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidROM)
	}

	buildDate := common.CleanString(data[offset+0x50 : offset+0x58])
	if len(buildDate) == 8 {
		// MMDDYYYY on disc, reordered to YYYY-MM-DD
		buildDate = fmt.Sprintf("%s-%s-%s", buildDate[4:8], buildDate[0:2], buildDate[2:4])
	}

	kind, id, version := parseSegaCDProductID(common.CleanString(data[offset+0x180 : offset+0x190]))

	rec := NewRecord()
	rec.Set("disc_ID", common.CleanString(data[offset:offset+0x10]))
	rec.Set("volume_ID", common.CleanString(data[offset+0x10:offset+0x1B]))
	rec.Set("system_name", common.CleanString(data[offset+0x20:offset+0x2B]))
	rec.Set("build_date", buildDate)
	rec.Set("system_type", common.CleanString(data[offset+0x100:offset+0x110]))
	rec.Set("release_year", common.CleanString(data[offset+0x118:offset+0x11C]))
	rec.Set("release_month", common.CleanString(data[offset+0x11D:offset+0x120]))
	rec.Set("title_domestic", common.CleanString(data[offset+0x120:offset+0x150]))
	rec.Set("title_overseas", common.CleanString(data[offset+0x150:offset+0x180]))
	if kind != "" {
		rec.Set("disc_kind", kind)
	}
	rec.Set("ID", id)
	if version != "" {
		rec.Set("version", version)
	}
	rec.Set("device_support", segaDeviceList(data[offset+0x190:offset+0x1A0], segaDeviceSupport))
	rec.Set("region_support", segaDeviceList(data[offset+0x1F0:offset+0x1F3], segaRegionSupport))
	return rec, nil
}

// readDiscHeader reads the leading bytes of a disc image, falling back to a
// plain file read for inputs the sector layer rejects
func readDiscHeader(path string, size int) ([]byte, error) {
	img, err := disc.OpenImage(path, false)
	if err != nil {
		return readHead(path, size)
	}
	defer img.Close()

	buf := make([]byte, size)
	read, err := img.ReadAt(buf, 0)
	if read == 0 && err != nil {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}
	return buf[:read], nil
}

func identifySegaCD(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readDiscHeader(path, SEGACD_HEADER_READ_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeSegaCD(data)
	if err != nil {
		return nil, err
	}
	if id := rec.Get("ID"); id != "" {
		serial := strings.ReplaceAll(id, "-", "")
		serial = strings.ReplaceAll(serial, " ", "")
		if entry, ok := db.Lookup("SegaCD", serial); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "title_overseas")
	return rec, nil
}
