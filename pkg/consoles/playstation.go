package consoles

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

func identifyPlayStationPath(path string, console Console, db *gamedb.DB, opts Options) (*Record, error) {
	view, err := openView(path, console, opts)
	if err != nil {
		return nil, err
	}
	defer view.Close()
	return identifyPlayStation(view, path, console, db, opts)
}

// identifyPlayStation resolves a PlayStation or PlayStation 2 disc through
// three fallbacks: executable names in the root directory, the volume ID,
// then the input filename. Discs store the serial as the boot executable
// name, so the root scan almost always wins.
func identifyPlayStation(view disc.View, inputPath string, console Console, db *gamedb.DB, opts Options) (*Record, error) {
	entries, err := view.RootFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, common.CleanFileName(strings.TrimPrefix(entry.Path, "/")))
	}
	sort.Strings(names)

	serial := ""
	var entry gamedb.Entry

	for _, prefix := range db.IDPrefixes(string(console)) {
		matched := false
		for _, name := range names {
			upper := strings.ToUpper(name)
			if !strings.HasPrefix(upper, prefix) {
				continue
			}
			matched = true
			candidate := strings.ReplaceAll(strings.ReplaceAll(upper, ".", ""), "-", "_")
			common.LogDebug(common.DebugSerialCandidate, candidate, prefix)
			if e, ok := db.Lookup(string(console), candidate); ok {
				serial, entry = candidate, e
				break
			}
			// Some boot executables drop the underscore after the prefix
			if len(candidate) > len(prefix) && candidate[len(prefix)] != '_' {
				alt := candidate[:len(prefix)] + "_" + candidate[len(prefix):]
				if e, ok := db.Lookup(string(console), alt); ok {
					serial, entry = alt, e
					break
				}
			}
		}
		if matched {
			break
		}
	}

	if entry == nil {
		if volume := view.VolumeID(); volume != "" {
			candidate := serialFromVolumeID(volume)
			common.LogDebug(common.DebugSerialFromVolume, candidate)
			if e, ok := db.Lookup(string(console), candidate); ok {
				serial, entry = candidate, e
			}
		}
	}
	if entry == nil && inputPath != "" {
		candidate := serialFromFilename(inputPath)
		common.LogDebug(common.DebugSerialFromName, candidate)
		if e, ok := db.Lookup(string(console), candidate); ok {
			serial, entry = candidate, e
		}
	}

	rec := NewRecord()
	if entry != nil {
		rec.Set("ID", strings.ReplaceAll(serial, "_", "-"))
	} else {
		common.LogWarn(common.WarnGameNotInDatabase)
	}
	if uuid := view.UUID(); uuid != "" {
		rec.Set("uuid", uuid)
	}
	if volume := view.VolumeID(); volume != "" {
		rec.Set("volume_ID", volume)
	}
	if entry != nil {
		rec.Merge(entry, opts.PreferGameDB)
	}
	rec.Set("root_files", strings.Join(names, " / "))
	return rec, nil
}

// serialFromVolumeID derives a serial candidate from the volume label,
// keeping the first two groups only when the label has exactly two
// underscores (a serial followed by one extra suffix)
func serialFromVolumeID(volume string) string {
	serial := strings.ReplaceAll(volume, "-", "_")
	if strings.Count(serial, "_") == 2 {
		parts := strings.Split(serial, "_")
		serial = parts[0] + "_" + parts[1]
	}
	return serial
}

// serialFromFilename strips the compression suffix and extension from the
// input filename. The result matches database keys directly, including the
// Redump name alternates the builder stores.
func serialFromFilename(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = strings.TrimSpace(name[:len(name)-3])
	}
	return strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name)))
}
