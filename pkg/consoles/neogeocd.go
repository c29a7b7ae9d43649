package consoles

import (
	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

func identifyNeoGeoCD(path string, db *gamedb.DB, opts Options) (*Record, error) {
	view, err := openView(path, ConsoleNeoGeoCD, opts)
	if err != nil {
		return nil, err
	}
	defer view.Close()
	return identifyNeoGeoCDView(view, db, opts)
}

// identifyNeoGeoCDView resolves a Neo Geo CD disc. The discs carry no
// serial, so lookup keys off the volume creation timestamp and volume ID.
func identifyNeoGeoCDView(view disc.View, db *gamedb.DB, opts Options) (*Record, error) {
	uuid := view.UUID()
	volume := view.VolumeID()

	rec := NewRecord()
	if uuid != "" {
		rec.Set("uuid", uuid)
	}
	if volume != "" {
		rec.Set("volume_ID", volume)
	}
	entry, ok := db.Lookup("NeoGeoCD", gamedb.KeyNeoGeoCD(uuid, volume))
	if !ok {
		entry, ok = db.Lookup("NeoGeoCD", volume)
	}
	if ok {
		rec.Merge(entry, opts.PreferGameDB)
	} else {
		common.LogWarn(common.WarnGameNotInDatabase)
	}
	if !rec.Has("ID") {
		rec.Set("ID", volume)
	}
	return rec, nil
}
