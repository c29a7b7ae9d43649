package consoles

import (
	"fmt"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Super Nintendo header layout, offsets relative to the header start
const (
	SNES_LOROM_HEADER_START = 0x7FC0
	SNES_HIROM_HEADER_START = 0xFFC0
	SNES_HEADER_SIZE        = 32
	SNES_COPIER_HEADER_SIZE = 512

	SNES_INTERNAL_TITLE_SIZE       = 21
	SNES_MAP_MODE_OFFSET           = 0x15
	SNES_ROM_TYPE_OFFSET           = 0x16
	SNES_DEVELOPER_ID_OFFSET       = 0x1A
	SNES_ROM_VERSION_OFFSET        = 0x1B
	SNES_CHECKSUM_COMPLEMENT_START = 0x1C
	SNES_CHECKSUM_OFFSET           = 0x1E
)

type snesHeader struct {
	internalName []byte
	headerStart  int
	checksum     uint16
	mapMode      byte
	romType      byte
	developerID  byte
	romVersion   byte
}

// snesFindHeader probes the LoROM then HiROM location; a header is valid
// when its checksum and complement sum to 0xFFFF
func snesFindHeader(data []byte) (snesHeader, error) {
	for _, start := range []int{SNES_LOROM_HEADER_START, SNES_HIROM_HEADER_START} {
		if start+SNES_HEADER_SIZE > len(data) {
			continue
		}
		common.LogDebug(common.DebugHeaderCandidate, start)
		cs := common.ReadUint16LE(data, start+SNES_CHECKSUM_OFFSET)
		csc := common.ReadUint16LE(data, start+SNES_CHECKSUM_COMPLEMENT_START)
		if cs+csc == 0xFFFF {
			return snesHeader{
				internalName: data[start : start+SNES_INTERNAL_TITLE_SIZE],
				headerStart:  start,
				checksum:     cs,
				mapMode:      data[start+SNES_MAP_MODE_OFFSET],
				romType:      data[start+SNES_ROM_TYPE_OFFSET],
				developerID:  data[start+SNES_DEVELOPER_ID_OFFSET],
				romVersion:   data[start+SNES_ROM_VERSION_OFFSET],
			}, nil
		}
	}
	return snesHeader{}, fmt.Errorf("%w: no valid header found", ErrInvalidROM)
}

func snesInternalNameHex(name []byte) string {
	out := "0x"
	for _, b := range name {
		out += fmt.Sprintf("%02x", b)
	}
	return out
}

func snesMapModeString(mapMode byte) (speed, layout string) {
	speed = "SlowROM"
	if mapMode&0x10 != 0 {
		speed = "FastROM"
	}
	layout = "LoROM"
	if mapMode&0x01 != 0 {
		layout = "HiROM"
	}
	if mapMode&0x04 != 0 {
		layout = "Ex" + layout
	}
	return speed, layout
}

// snesHardware describes the cartridge hardware from the ROM type byte.
// The low nibble selects the configuration, the high nibble the coprocessor.
func snesHardware(romType byte, data []byte, headerStart int) string {
	var hardware string
	switch low := romType & 0x0F; {
	case low == 0:
		hardware = "ROM"
	case low == 1:
		hardware = "ROM + RAM"
	case low == 2:
		hardware = "ROM + RAM + Battery"
	case low >= 3 && low <= 6:
		hardware = []string{
			"ROM + Coprocessor",
			"ROM + Coprocessor + RAM",
			"ROM + Coprocessor + RAM + Battery",
			"ROM + Coprocessor + Battery",
		}[low-3]
	}
	if strings.Contains(hardware, "Coprocessor") {
		if chip := snesCoprocessor(romType, data, headerStart); chip != "" {
			hardware = strings.Replace(hardware, "Coprocessor", "Coprocessor ("+chip+")", 1)
		}
	}
	return hardware
}

func snesCoprocessor(romType byte, data []byte, headerStart int) string {
	switch romType >> 4 {
	case 0x0:
		return "DSP"
	case 0x1:
		return "Super FX"
	case 0x2:
		return "OBC1"
	case 0x3:
		return "SA-1"
	case 0x4:
		return "S-DD1"
	case 0x5:
		return "S-RTC"
	case 0xE:
		return "Super Game Boy / Satellaview"
	case 0xF:
		// Chip identity lives in the expansion byte right before the header
		if headerStart <= 0 || headerStart > len(data) {
			return ""
		}
		switch data[headerStart-1] & 0x0F {
		case 0:
			return "SPC7110"
		case 1:
			return "ST010 / ST011"
		case 2:
			return "ST018"
		case 3:
			return "CX4"
		}
	}
	return ""
}

// DecodeSNES extracts header fields from a Super Nintendo dump
func DecodeSNES(data []byte) (*Record, error) {
	rec, _, name, err := decodeSNES(data)
	if err != nil {
		return nil, err
	}
	if rec.Get("title") == "" && name != "" {
		rec.Set("title", name)
	}
	return rec, nil
}

// decodeSNES also returns the composite database key and the printable
// internal name for title fallback
func decodeSNES(data []byte) (*Record, string, string, error) {
	// Copier headers from old backup units prepend 512 bytes
	if len(data) > SNES_COPIER_HEADER_SIZE && len(data)%1024 == SNES_COPIER_HEADER_SIZE {
		common.LogDebug(common.DebugCopierHeader, SNES_COPIER_HEADER_SIZE)
		data = data[SNES_COPIER_HEADER_SIZE:]
	}

	header, err := snesFindHeader(data)
	if err != nil {
		return nil, "", "", err
	}

	nameHex := snesInternalNameHex(header.internalName)
	speed, layout := snesMapModeString(header.mapMode)

	rec := NewRecord()
	rec.Set("internal_title", nameHex)
	rec.Set("fast_slow_rom", speed)
	rec.Set("rom_type", layout)
	rec.Set("developer_ID", fmt.Sprintf("0x%02X", header.developerID))
	rec.Set("rom_version", fmt.Sprintf("%d", header.romVersion))
	rec.Set("checksum", fmt.Sprintf("0x%04X", header.checksum))
	if hardware := snesHardware(header.romType, data, header.headerStart); hardware != "" {
		rec.Set("hardware", hardware)
	}

	key := gamedb.KeySNES(header.developerID, nameHex, header.romVersion, header.checksum)
	return rec, key, common.ExtractPrintable(header.internalName), nil
}

// ValidateSNES reports whether a checksum-consistent header exists at
// either candidate location
func ValidateSNES(data []byte) bool {
	if len(data) > SNES_COPIER_HEADER_SIZE && len(data)%1024 == SNES_COPIER_HEADER_SIZE {
		data = data[SNES_COPIER_HEADER_SIZE:]
	}
	_, err := snesFindHeader(data)
	return err == nil
}

func identifySNES(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readROM(path)
	if err != nil {
		return nil, err
	}
	rec, key, name, err := decodeSNES(data)
	if err != nil {
		return nil, err
	}
	if entry, ok := db.Lookup("SNES", key); ok {
		rec.Merge(entry, opts.PreferGameDB)
	} else {
		common.LogDebug(common.WarnGameNotInDatabase)
	}
	if rec.Get("title") == "" && name != "" {
		rec.Set("title", name)
	}
	return rec, nil
}
