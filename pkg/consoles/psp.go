package consoles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// UMD_DATA.BIN holds the disc serial as its first pipe-separated field
const PSP_UMD_DATA_FILE = "UMD_DATA.BIN"

func identifyPSP(path string, db *gamedb.DB, opts Options) (*Record, error) {
	view, err := openView(path, ConsolePSP, opts)
	if err != nil {
		return nil, err
	}
	defer view.Close()
	return identifyPSPView(view, db, opts)
}

func identifyPSPView(view disc.View, db *gamedb.DB, opts Options) (*Record, error) {
	entries, err := view.RootFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	var umdEntry *disc.FileEntry
	for i, entry := range entries {
		name := common.CleanFileName(strings.TrimPrefix(entry.Path, "/"))
		names = append(names, name)
		if strings.EqualFold(name, PSP_UMD_DATA_FILE) {
			umdEntry = &entries[i]
		}
	}
	sort.Strings(names)

	if umdEntry == nil {
		return nil, fmt.Errorf("%w: no %s in disc root", ErrInvalidROM, PSP_UMD_DATA_FILE)
	}
	data, err := view.ReadFile(*umdEntry)
	if err != nil {
		return nil, err
	}
	serial := string(data)
	if cut := strings.IndexByte(serial, '|'); cut >= 0 {
		serial = serial[:cut]
	}
	serial = strings.TrimSpace(serial)

	rec := NewRecord()
	rec.Set("ID", serial)
	if uuid := view.UUID(); uuid != "" {
		rec.Set("uuid", uuid)
	}
	if volume := view.VolumeID(); volume != "" {
		rec.Set("volume_ID", volume)
	}
	if entry, ok := db.Lookup("PSP", strings.ReplaceAll(serial, "-", "_")); ok {
		rec.Merge(entry, opts.PreferGameDB)
	} else {
		common.LogWarn(common.WarnGameNotInDatabase)
	}
	rec.Set("root_files", strings.Join(names, " / "))
	return rec, nil
}
