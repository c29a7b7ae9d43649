package consoles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Mega Drive / Genesis header layout, offsets relative to the magic word
const (
	GENESIS_HEADER_SCAN_START = 0x100
	GENESIS_HEADER_SCAN_END   = 0x200
	GENESIS_HEADER_READ_SIZE  = 0x300
)

// System name strings that open a Mega Drive header
var genesisMagicWords = []string{
	"SEGA GENESIS",
	"SEGA MEGA DRIVE",
	"SEGA 32X",
	"SEGA EVERDRIVE",
	"SEGA SSF",
	"SEGA MEGAWIFI",
	"SEGA PICO",
	"SEGA TERA68K",
	"SEGA TERA286",
}

// Peripheral codes shared by Mega Drive and Sega CD headers
var segaDeviceSupport = map[byte]string{
	'J': "3-button Controller",
	'6': "6-button Controller",
	'0': "Master System Controller",
	'A': "Analog Joystick",
	'4': "Multitap",
	'G': "Lightgun",
	'L': "Activator",
	'M': "Mouse",
	'B': "Trackball",
	'T': "Tablet",
	'V': "Paddle",
	'K': "Keyboard or Keypad",
	'R': "RS-232",
	'P': "Printer",
	'C': "CD-ROM (Sega CD)",
	'F': "Floppy Drive",
	'D': "Download",
}

var segaRegionSupport = map[byte]string{
	'J': "Japan",
	'U': "Americas",
	'E': "Europe",
}

var segaSoftwareTypes = map[string]string{
	"GM": "Game",
	"AI": "Aid",
	"OS": "Boot ROM (TMSS)",
	"BR": "Boot ROM (Sega CD)",
}

var segaMonths = map[string]string{
	"JAN": "January",
	"FEB": "February",
	"MAR": "March",
	"APR": "April",
	"MAY": "May",
	"JUN": "June",
	"JUL": "July",
	"AUG": "August",
	"SEP": "September",
	"OCT": "October",
	"NOV": "November",
	"DEC": "December",
}

// findGenesisMagic scans the header window for a system name string
func findGenesisMagic(data []byte) int {
	for _, magic := range genesisMagicWords {
		if pos := findMagic(data, []byte(magic), GENESIS_HEADER_SCAN_START, GENESIS_HEADER_SCAN_END); pos >= 0 {
			common.LogDebug(common.DebugMagicWordFound, magic, pos)
			return pos
		}
	}
	return -1
}

// segaDeviceList decodes peripheral codes into a sorted, slash-joined list
func segaDeviceList(data []byte, table map[byte]string) string {
	var names []string
	seen := map[string]bool{}
	for _, b := range data {
		if b == 0 || b == ' ' {
			continue
		}
		name, ok := table[b]
		if !ok {
			if b < 0x20 || b > 0x7E {
				continue
			}
			name = string(b)
		}
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	sort.Strings(names)
	return strings.Join(names, " / ")
}

// DecodeGenesis extracts header fields from a Mega Drive / Genesis dump
func DecodeGenesis(data []byte) (*Record, error) {
	offset := findGenesisMagic(data)
	if offset < 0 {
		return nil, fmt.Errorf("%w: system name not found in header window", ErrInvalidROM)
	}
	if len(data) < offset+0xF3 {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidROM)
	}

	releaseMonth := common.CleanString(data[offset+0x1D : offset+0x20])
	if month, ok := segaMonths[releaseMonth]; ok {
		releaseMonth = month
	}
	softwareType := common.CleanString(data[offset+0x80 : offset+0x82])
	if st, ok := segaSoftwareTypes[softwareType]; ok {
		softwareType = st
	}

	rec := NewRecord()
	rec.Set("system_type", common.CleanString(data[offset:offset+0x10]))
	rec.Set("publisher", common.DecodeTrim(data[offset+0x13:offset+0x17]))
	rec.Set("release_year", common.CleanString(data[offset+0x18:offset+0x1C]))
	rec.Set("release_month", releaseMonth)
	rec.Set("title_domestic", common.CleanString(data[offset+0x20:offset+0x50]))
	rec.Set("title_overseas", common.CleanString(data[offset+0x50:offset+0x80]))
	rec.Set("software_type", softwareType)
	rec.Set("ID", common.CleanString(data[offset+0x82:offset+0x8B]))
	rec.Set("revision", common.DecodeTrim(data[offset+0x8C:offset+0x8E]))
	rec.Set("checksum", fmt.Sprintf("0x%04X", common.ReadUint16BE(data, offset+0x8E)))
	rec.Set("device_support", segaDeviceList(data[offset+0x90:offset+0xA0], segaDeviceSupport))
	rec.Set("rom_start", fmt.Sprintf("0x%X", common.ReadUint32BE(data, offset+0xA0)))
	rec.Set("rom_end", fmt.Sprintf("0x%X", common.ReadUint32BE(data, offset+0xA4)))
	rec.Set("ram_start", fmt.Sprintf("0x%X", common.ReadUint32BE(data, offset+0xA8)))
	rec.Set("ram_end", fmt.Sprintf("0x%X", common.ReadUint32BE(data, offset+0xAC)))
	rec.Set("modem_support", common.DecodeTrim(data[offset+0xBC:offset+0xC8]))
	rec.Set("region_support", segaDeviceList(data[offset+0xF0:offset+0xF3], segaRegionSupport))
	return rec, nil
}

func identifyGenesis(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readHead(path, GENESIS_HEADER_READ_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeGenesis(data)
	if err != nil {
		return nil, err
	}
	if id := rec.Get("ID"); id != "" {
		serial := strings.ReplaceAll(id, "-", "")
		serial = strings.ReplaceAll(serial, " ", "_")
		if entry, ok := db.Lookup("Genesis", serial); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "title_overseas")
	return rec, nil
}
