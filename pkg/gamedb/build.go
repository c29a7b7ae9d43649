package gamedb

import (
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/hansbonini/gameidtools/pkg/common"
)

// BuildConsoles names the GameDB exports consumed by Build, matching the
// <Console>.data.tsv file naming of the upstream dumps
var BuildConsoles = []string{
	"GB", "GBA", "GBC", "GC", "Genesis", "N64", "NeoGeoCD",
	"PSP", "PSX", "PS2", "Saturn", "SegaCD", "SNES",
}

// gameRow is one line of a GameDB TSV export. Consoles only fill the columns
// that exist for them; everything else stays empty.
type gameRow struct {
	ID             string `csv:"ID"`
	Title          string `csv:"title"`
	Region         string `csv:"region"`
	Developer      string `csv:"developer"`
	Publisher      string `csv:"publisher"`
	ReleaseDate    string `csv:"release_date"`
	Genre          string `csv:"genre"`
	Players        string `csv:"players"`
	Language       string `csv:"language"`
	Rating         string `csv:"rating"`
	InternalTitle  string `csv:"internal_title"`
	GlobalChecksum string `csv:"global_checksum_expected"`
	DeveloperID    string `csv:"developer_ID"`
	RomVersion     string `csv:"rom_version"`
	Checksum       string `csv:"checksum"`
	UUID           string `csv:"uuid"`
	VolumeID       string `csv:"volume_ID"`
	RedumpName     string `csv:"redump_name"`
}

// entry converts a row into stored metadata, dropping the key column and
// empty fields
func (r *gameRow) entry() Entry {
	e := Entry{}
	fields := map[string]string{
		"title":          r.Title,
		"region":         r.Region,
		"developer":      r.Developer,
		"publisher":      r.Publisher,
		"release_date":   r.ReleaseDate,
		"genre":          r.Genre,
		"players":        r.Players,
		"language":       r.Language,
		"rating":         r.Rating,
		"internal_title": r.InternalTitle,
	}
	for k, v := range fields {
		if v != "" {
			e[k] = v
		}
	}
	return e
}

// Build runs the offline ETL over a directory of GameDB TSV exports and
// produces a queryable database. Game Boy and Game Boy Color share one table
// keyed by internal title and global checksum since their serials are not on
// the cartridge.
func Build(dir string) (*DB, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = '\t'
		r.LazyQuotes = true
		return r
	})

	db := New()
	prefixCounts := map[string]map[string]int{}

	for _, console := range BuildConsoles {
		path := filepath.Join(dir, console+".data.tsv")
		file, err := os.Open(path)
		if err != nil {
			common.LogDebug(common.WarnSkippingDataFile, path, err)
			continue
		}

		var rows []*gameRow
		err = gocsv.Unmarshal(file, &rows)
		file.Close()
		if err != nil {
			common.LogWarn(common.WarnSkippingDataFile, path, err)
			continue
		}

		table := tableName(console)
		if db.Consoles[table] == nil {
			db.Consoles[table] = make(map[string]Entry)
		}

		for _, row := range rows {
			key, ok := buildKey(console, row)
			if !ok {
				continue
			}
			db.Consoles[table][key] = row.entry()

			if console == "NeoGeoCD" && row.UUID != "" {
				volume := row.VolumeID
				if volume == "" {
					volume = row.ID
				}
				db.Consoles[table][KeyNeoGeoCD(row.UUID, volume)] = row.entry()
			}

			if console == "PSX" || console == "PS2" {
				// Redump names as alternate keys, so the input filename
				// fallback works for discs ripped with standard naming
				if row.RedumpName != "" {
					db.Consoles[table][row.RedumpName] = row.entry()
				}

				prefix, _, found := strings.Cut(key, "_")
				if found && prefix != "" {
					if prefixCounts[console] == nil {
						prefixCounts[console] = map[string]int{}
					}
					prefixCounts[console][prefix]++
				}
			}
		}
		common.LogInfo("%s: %s (%d entries)", common.InfoBuildConsoleDone, console, len(rows))
	}

	for console, counts := range prefixCounts {
		db.Prefixes[console] = sortPrefixes(counts)
	}
	return db, nil
}

// tableName maps a GameDB export name to its database table
func tableName(console string) string {
	if console == "GB" || console == "GBC" {
		return "GB_GBC"
	}
	return console
}

// buildKey derives the lookup key a resolver will reproduce at
// identification time
func buildKey(console string, row *gameRow) (string, bool) {
	switch console {
	case "GB", "GBC":
		if row.InternalTitle == "" {
			return "", false
		}
		checksum, ok := parseNum(row.GlobalChecksum)
		if !ok {
			return "", false
		}
		return KeyGB(row.InternalTitle, uint16(checksum)), true
	case "SNES":
		if row.InternalTitle == "" {
			return row.ID, row.ID != ""
		}
		developerID, _ := parseNum(row.DeveloperID)
		romVersion, _ := parseNum(row.RomVersion)
		checksum, _ := parseNum(row.Checksum)
		titleHex := row.InternalTitle
		if !strings.HasPrefix(titleHex, "0x") {
			titleHex = "0x" + hex.EncodeToString([]byte(titleHex))
		}
		return KeySNES(uint8(developerID), titleHex, uint8(romVersion), uint16(checksum)), true
	case "GC":
		// GameDB serials look like DOL-GALE-USA; cartridges only carry the
		// middle game code
		parts := strings.Split(row.ID, "-")
		if len(parts) == 3 {
			return parts[1], true
		}
		return row.ID, row.ID != ""
	case "N64":
		// GameDB serials look like NUS-NSME-USA; cartridges carry the last
		// three letters of the middle part (game code + region)
		parts := strings.Split(row.ID, "-")
		if len(parts) == 3 && len(parts[1]) == 4 {
			return parts[1][1:], true
		}
		return row.ID, row.ID != ""
	case "Genesis":
		if row.ID == "" {
			return "", false
		}
		key := strings.ReplaceAll(row.ID, "-", "")
		return strings.ReplaceAll(key, " ", "_"), true
	case "Saturn":
		// The on-disc product number field holds only the first token of
		// the serial
		fields := strings.Fields(row.ID)
		if len(fields) == 0 {
			return "", false
		}
		return strings.ReplaceAll(fields[0], "-", ""), true
	case "SegaCD":
		if row.ID == "" {
			return "", false
		}
		key := strings.ReplaceAll(row.ID, "-", "")
		return strings.ReplaceAll(key, " ", ""), true
	case "NeoGeoCD":
		// Discs are matched by volume label; uuid|volume composites are
		// added separately
		if row.VolumeID != "" {
			return row.VolumeID, true
		}
		return row.ID, row.ID != ""
	case "PSX", "PS2", "PSP":
		if row.ID == "" {
			return "", false
		}
		return strings.ReplaceAll(row.ID, "-", "_"), true
	default:
		return row.ID, row.ID != ""
	}
}

// sortPrefixes orders serial prefixes by descending frequency, then name
func sortPrefixes(counts map[string]int) []string {
	prefixes := make([]string, 0, len(counts))
	for prefix := range counts {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if counts[prefixes[i]] != counts[prefixes[j]] {
			return counts[prefixes[i]] > counts[prefixes[j]]
		}
		return prefixes[i] < prefixes[j]
	})
	return prefixes
}

// parseNum parses decimal or 0x-prefixed numeric TSV fields
func parseNum(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return value, true
}
