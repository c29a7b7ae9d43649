package consoles

import (
	"bytes"
	"fmt"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Game Boy / Game Boy Color header layout
const (
	GB_HEADER_SIZE            = 0x0150
	GB_LOGO_OFFSET            = 0x0104
	GB_LOGO_SIZE              = 48
	GB_TITLE_OFFSET           = 0x0134
	GB_TITLE_SIZE_SHORT       = 11
	GB_TITLE_SIZE_LONG        = 16
	GB_MANUFACTURER_OFFSET    = 0x013F
	GB_MANUFACTURER_SIZE      = 4
	GB_CGB_FLAG_OFFSET        = 0x0143
	GB_NEW_LICENSEE_OFFSET    = 0x0144
	GB_SGB_FLAG_OFFSET        = 0x0146
	GB_CART_TYPE_OFFSET       = 0x0147
	GB_ROM_SIZE_OFFSET        = 0x0148
	GB_RAM_SIZE_OFFSET        = 0x0149
	GB_OLD_LICENSEE_OFFSET    = 0x014B
	GB_ROM_VERSION_OFFSET     = 0x014C
	GB_HEADER_CHECKSUM_OFFSET = 0x014D
	GB_GLOBAL_CHECKSUM_OFFSET = 0x014E
)

// Boot ROM logo, present in every licensed cartridge
var gbLogo = []byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

var gbCartridgeTypes = map[byte]string{
	0x00: "ROM",
	0x01: "MBC1",
	0x02: "MBC1 + RAM",
	0x03: "MBC1 + RAM + Battery",
	0x05: "MBC2",
	0x06: "MBC2 + Battery",
	0x08: "ROM + RAM",
	0x09: "ROM + RAM + Battery",
	0x0B: "MMM01",
	0x0C: "MMM01 + RAM",
	0x0D: "MMM01 + RAM + Battery",
	0x0F: "MBC3 + Timer + Battery",
	0x10: "MBC3 + Timer + RAM + Battery",
	0x11: "MBC3",
	0x12: "MBC3 + RAM",
	0x13: "MBC3 + RAM + Battery",
	0x19: "MBC5",
	0x1A: "MBC5 + RAM",
	0x1B: "MBC5 + RAM + Battery",
	0x1C: "MBC5 + Rumble",
	0x1D: "MBC5 + Rumble + RAM",
	0x1E: "MBC5 + Rumble + RAM + Battery",
	0x20: "MBC6",
	0x22: "MBC7 + Sensor + Rumble + RAM + Battery",
	0xFC: "Pocket Camera",
	0xFD: "Bandai TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1 + RAM + Battery",
}

var gbROMSizeBanks = map[byte]struct {
	size  int
	banks int
}{
	0x00: {32768, 2},
	0x01: {65536, 4},
	0x02: {131072, 8},
	0x03: {262144, 16},
	0x04: {524288, 32},
	0x05: {1048576, 64},
	0x06: {2097152, 128},
	0x07: {4194304, 256},
	0x08: {8388608, 512},
	0x52: {1179648, 72},
	0x53: {1310720, 80},
	0x54: {1572864, 96},
}

var gbRAMSizeBanks = map[byte]struct {
	size  int
	banks int
}{
	0x00: {0, 0},
	0x01: {2048, 1},
	0x02: {8192, 1},
	0x03: {32768, 4},
	0x04: {131072, 16},
	0x05: {65536, 8},
}

// New licensee codes, used when the old licensee byte is 0x33
var gbLicenseeNew = map[string]string{
	"00": "None",
	"01": "Nintendo R&D1",
	"08": "Capcom",
	"13": "Electronic Arts",
	"18": "Hudson Soft",
	"19": "b-ai",
	"20": "kss",
	"22": "pow",
	"24": "PCM Complete",
	"25": "san-x",
	"28": "Kemco Japan",
	"29": "seta",
	"30": "Viacom",
	"31": "Nintendo",
	"32": "Bandai",
	"33": "Ocean/Acclaim",
	"34": "Konami",
	"35": "Hector",
	"37": "Taito",
	"38": "Hudson",
	"39": "Banpresto",
	"41": "Ubi Soft",
	"42": "Atlus",
	"44": "Malibu",
	"46": "angel",
	"47": "Bullet-Proof",
	"49": "irem",
	"50": "Absolute",
	"51": "Acclaim",
	"52": "Activision",
	"53": "American sammy",
	"54": "Konami",
	"55": "Hi tech entertainment",
	"56": "LJN",
	"57": "Matchbox",
	"58": "Mattel",
	"59": "Milton Bradley",
	"60": "Titus",
	"61": "Virgin",
	"64": "LucasArts",
	"67": "Ocean",
	"69": "Electronic Arts",
	"70": "Infogrames",
	"71": "Interplay",
	"72": "Broderbund",
	"73": "sculptured",
	"75": "sci",
	"78": "THQ",
	"79": "Accolade",
	"80": "misawa",
	"83": "lozc",
	"86": "Tokuma Shoten Intermedia",
	"87": "Tsukuda Original",
	"91": "Chunsoft",
	"92": "Video system",
	"93": "Ocean/Acclaim",
	"95": "Varie",
	"96": "Yonezawa/s'pal",
	"97": "Kaneko",
	"99": "Pack in soft",
	"A4": "Konami (Yu-Gi-Oh!)",
}

var gbLicenseeOld = map[byte]string{
	0x00: "None",
	0x01: "Nintendo",
	0x08: "Capcom",
	0x09: "Hot-B",
	0x0A: "Jaleco",
	0x0B: "Coconuts Japan",
	0x0C: "Elite Systems",
	0x13: "EA (Electronic Arts)",
	0x18: "Hudsonsoft",
	0x19: "ITC Entertainment",
	0x1A: "Yanoman",
	0x1D: "Japan Clary",
	0x1F: "Virgin Interactive",
	0x24: "PCM Complete",
	0x25: "San-X",
	0x28: "Kotobuki Systems",
	0x29: "Seta",
	0x30: "Infogrames",
	0x31: "Nintendo",
	0x32: "Bandai",
	0x34: "Konami",
	0x35: "HectorSoft",
	0x38: "Capcom",
	0x39: "Banpresto",
	0x3C: ".Entertainment i",
	0x3E: "Gremlin",
	0x41: "Ubisoft",
	0x42: "Atlus",
	0x44: "Malibu",
	0x46: "Angel",
	0x47: "Spectrum Holoby",
	0x49: "Irem",
	0x4A: "Virgin Interactive",
	0x4D: "Malibu",
	0x4F: "U.S. Gold",
	0x50: "Absolute",
	0x51: "Acclaim",
	0x52: "Activision",
	0x53: "American Sammy",
	0x54: "GameTek",
	0x55: "Park Place",
	0x56: "LJN",
	0x57: "Matchbox",
	0x59: "Milton Bradley",
	0x5A: "Mindscape",
	0x5B: "Romstar",
	0x5C: "Naxat Soft",
	0x5D: "Tradewest",
	0x60: "Titus",
	0x61: "Virgin Interactive",
	0x67: "Ocean Interactive",
	0x69: "EA (Electronic Arts)",
	0x6E: "Elite Systems",
	0x6F: "Electro Brain",
	0x70: "Infogrames",
	0x71: "Interplay",
	0x72: "Broderbund",
	0x73: "Sculptered Soft",
	0x75: "The Sales Curve",
	0x78: "t.hq",
	0x79: "Accolade",
	0x7A: "Triffix Entertainment",
	0x7C: "Microprose",
	0x7F: "Kemco",
	0x80: "Misawa Entertainment",
	0x83: "Lozc",
	0x86: "Tokuma Shoten Intermedia",
	0x8B: "Bullet-Proof Software",
	0x8C: "Vic Tokai",
	0x8E: "Ape",
	0x8F: "I'Max",
	0x91: "Chunsoft Co.",
	0x92: "Video System",
	0x93: "Tsubaraya Productions Co.",
	0x95: "Varie Corporation",
	0x96: "Yonezawa/S'Pal",
	0x97: "Kaneko",
	0x99: "Arc",
	0x9A: "Nihon Bussan",
	0x9B: "Tecmo",
	0x9C: "Imagineer",
	0x9D: "Banpresto",
	0x9F: "Nova",
	0xA1: "Hori Electric",
	0xA2: "Bandai",
	0xA4: "Konami",
	0xA6: "Kawada",
	0xA7: "Takara",
	0xA9: "Technos Japan",
	0xAA: "Broderbund",
	0xAC: "Toei Animation",
	0xAD: "Toho",
	0xAF: "Namco",
	0xB0: "acclaim",
	0xB1: "ASCII or Nexsoft",
	0xB2: "Bandai",
	0xB4: "Square Enix",
	0xB6: "HAL Laboratory",
	0xB7: "SNK",
	0xB9: "Pony Canyon",
	0xBA: "Culture Brain",
	0xBB: "Sunsoft",
	0xBD: "Sony Imagesoft",
	0xBF: "Sammy",
	0xC0: "Taito",
	0xC2: "Kemco",
	0xC3: "Squaresoft",
	0xC4: "Tokuma Shoten Intermedia",
	0xC5: "Data East",
	0xC6: "Tonkinhouse",
	0xC8: "Koei",
	0xC9: "UFL",
	0xCA: "Ultra",
	0xCB: "Vap",
	0xCC: "Use Corporation",
	0xCD: "Meldac",
	0xCE: ".Pony Canyon or",
	0xCF: "Angel",
	0xD0: "Taito",
	0xD1: "Sofel",
	0xD2: "Quest",
	0xD3: "Sigma Enterprises",
	0xD4: "ASK Kodansha Co.",
	0xD6: "Naxat Soft",
	0xD7: "Copya System",
	0xD9: "Banpresto",
	0xDA: "Tomy",
	0xDB: "LJN",
	0xDD: "NCS",
	0xDE: "Human",
	0xDF: "Altron",
	0xE0: "Jaleco",
	0xE1: "Towa Chiki",
	0xE2: "Yutaka",
	0xE3: "Varie",
	0xE5: "Epcoh",
	0xE7: "Athena",
	0xE8: "Asmik ACE Entertainment",
	0xE9: "Natsume",
	0xEA: "King Records",
	0xEB: "Atlus",
	0xEC: "Epic/Sony Records",
	0xEE: "IGS",
	0xF0: "A Wave",
	0xF3: "Extreme Entertainment",
	0xFF: "LJN",
}

// DecodeGB extracts header fields from a Game Boy or Game Boy Color dump
func DecodeGB(data []byte) (*Record, error) {
	rec, _, err := decodeGB(data)
	return rec, err
}

// decodeGB also returns the composite database key derived from the header
func decodeGB(data []byte) (*Record, string, error) {
	if len(data) < GB_HEADER_SIZE {
		return nil, "", fmt.Errorf("%w: file smaller than cartridge header", ErrInvalidROM)
	}

	if !bytes.Equal(data[GB_LOGO_OFFSET:GB_LOGO_OFFSET+GB_LOGO_SIZE], gbLogo) {
		common.LogWarn(common.WarnInvalidLogo)
	}

	// An all uppercase manufacturer code shortens the title field
	title := ""
	manufacturer := ""
	mfg := data[GB_MANUFACTURER_OFFSET : GB_MANUFACTURER_OFFSET+GB_MANUFACTURER_SIZE]
	isManufacturer := true
	for _, b := range mfg {
		if b < 'A' || b > 'Z' {
			isManufacturer = false
			break
		}
	}
	if isManufacturer {
		manufacturer = string(mfg)
		title = common.ExtractPrintable(data[GB_TITLE_OFFSET : GB_TITLE_OFFSET+GB_TITLE_SIZE_SHORT])
	} else {
		title = common.ExtractPrintable(data[GB_TITLE_OFFSET : GB_TITLE_OFFSET+GB_TITLE_SIZE_LONG])
	}

	cgbMode := "GB"
	switch {
	case data[GB_CGB_FLAG_OFFSET] == 0x80:
		cgbMode = "GBC (supports GB)"
	case data[GB_CGB_FLAG_OFFSET] == 0xC0:
		cgbMode = "GBC only"
	case data[GB_CGB_FLAG_OFFSET]&0x0C != 0:
		cgbMode = "PGB"
	}

	cartridgeType := "Unknown"
	if ct, ok := gbCartridgeTypes[data[GB_CART_TYPE_OFFSET]]; ok {
		cartridgeType = ct
	}
	romSize, romBanks := "Unknown", "Unknown"
	if rs, ok := gbROMSizeBanks[data[GB_ROM_SIZE_OFFSET]]; ok {
		romSize = fmt.Sprintf("%d", rs.size)
		romBanks = fmt.Sprintf("%d", rs.banks)
	}
	ramSize, ramBanks := "Unknown", "Unknown"
	if rs, ok := gbRAMSizeBanks[data[GB_RAM_SIZE_OFFSET]]; ok {
		ramSize = fmt.Sprintf("%d", rs.size)
		ramBanks = fmt.Sprintf("%d", rs.banks)
	}

	licensee := "Unknown"
	if data[GB_OLD_LICENSEE_OFFSET] == 0x33 {
		code := string(data[GB_NEW_LICENSEE_OFFSET : GB_NEW_LICENSEE_OFFSET+2])
		if l, ok := gbLicenseeNew[code]; ok {
			licensee = l
		}
	} else if l, ok := gbLicenseeOld[data[GB_OLD_LICENSEE_OFFSET]]; ok {
		licensee = l
	}

	headerChecksumExpected := data[GB_HEADER_CHECKSUM_OFFSET]
	headerChecksumActual := uint8(0)
	for i := GB_TITLE_OFFSET; i < GB_HEADER_CHECKSUM_OFFSET; i++ {
		headerChecksumActual = headerChecksumActual - data[i] - 1
	}
	if headerChecksumActual != headerChecksumExpected {
		common.LogWarn(common.WarnChecksumMismatch, headerChecksumExpected, headerChecksumActual)
	}

	globalChecksumExpected := uint16(data[GB_GLOBAL_CHECKSUM_OFFSET])<<8 |
		uint16(data[GB_GLOBAL_CHECKSUM_OFFSET+1])
	var globalChecksumActual uint16
	for i, b := range data {
		if i != GB_GLOBAL_CHECKSUM_OFFSET && i != GB_GLOBAL_CHECKSUM_OFFSET+1 {
			globalChecksumActual += uint16(b)
		}
	}

	rec := NewRecord()
	rec.Set("internal_title", title)
	if manufacturer != "" {
		rec.Set("manufacturer_code", manufacturer)
	}
	rec.Set("cgb_mode", cgbMode)
	rec.Set("sgb_support", fmt.Sprintf("%t", data[GB_SGB_FLAG_OFFSET] == 0x03))
	rec.Set("cartridge_type", cartridgeType)
	rec.Set("rom_size", romSize)
	rec.Set("rom_banks", romBanks)
	rec.Set("ram_size", ramSize)
	rec.Set("ram_banks", ramBanks)
	rec.Set("licensee", licensee)
	rec.Set("rom_version", fmt.Sprintf("%d", data[GB_ROM_VERSION_OFFSET]))
	rec.Set("header_checksum_expected", fmt.Sprintf("0x%02X", headerChecksumExpected))
	rec.Set("header_checksum_actual", fmt.Sprintf("0x%02X", headerChecksumActual))
	rec.Set("global_checksum_expected", fmt.Sprintf("0x%04X", globalChecksumExpected))
	rec.Set("global_checksum_actual", fmt.Sprintf("0x%04X", globalChecksumActual))

	return rec, gamedb.KeyGB(title, globalChecksumExpected), nil
}

// ValidateGB reports whether the header carries the boot ROM logo
func ValidateGB(data []byte) bool {
	if len(data) < GB_HEADER_SIZE {
		return false
	}
	return bytes.Equal(data[GB_LOGO_OFFSET:GB_LOGO_OFFSET+GB_LOGO_SIZE], gbLogo)
}

func identifyGB(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readROM(path)
	if err != nil {
		return nil, err
	}
	rec, key, err := decodeGB(data)
	if err != nil {
		return nil, err
	}
	if entry, ok := db.Lookup("GB_GBC", key); ok {
		rec.Merge(entry, opts.PreferGameDB)
	} else {
		common.LogDebug(common.WarnGameNotInDatabase)
	}
	fallbackTitle(rec, "internal_title")
	return rec, nil
}
