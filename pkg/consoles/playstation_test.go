package consoles

import (
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

func newPSXTestDB() *gamedb.DB {
	db := gamedb.New()
	db.Consoles["PSX"] = map[string]gamedb.Entry{
		"SLUS_00594":         {"title": "Crash Bandicoot 3 - Warped", "region": "NTSC-U"},
		"SCUS_94163":         {"title": "Gran Turismo", "region": "NTSC-U"},
		"Gran Turismo (USA)": {"title": "Gran Turismo", "region": "NTSC-U"},
	}
	db.Prefixes["PSX"] = []string{"SLUS", "SCUS"}
	return db
}

func TestIdentifyPlayStation_RootFileSerial(t *testing.T) {
	view := newStubView("2024-01-01-12-30-00-00", "CRASH3", "SYSTEM.CNF", "SLUS_005.94")
	rec, err := identifyPlayStation(view, "", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("ID"); got != "SLUS-00594" {
		t.Errorf("ID = %q, want %q", got, "SLUS-00594")
	}
	if got := rec.Get("title"); got != "Crash Bandicoot 3 - Warped" {
		t.Errorf("title = %q", got)
	}
	if got := rec.Get("uuid"); got != "2024-01-01-12-30-00-00" {
		t.Errorf("uuid = %q", got)
	}
	if got := rec.Get("volume_ID"); got != "CRASH3" {
		t.Errorf("volume_ID = %q", got)
	}
	if got := rec.Get("root_files"); got != "SLUS_005.94 / SYSTEM.CNF" {
		t.Errorf("root_files = %q", got)
	}
}

func TestIdentifyPlayStation_MissingUnderscore(t *testing.T) {
	view := newStubView("", "GAME", "SLUS005.94")
	rec, err := identifyPlayStation(view, "", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("ID"); got != "SLUS-00594" {
		t.Errorf("ID = %q, want the underscore reinserted after the prefix", got)
	}
}

func TestIdentifyPlayStation_VolumeFallback(t *testing.T) {
	// Root scan wins over the volume, so the root file must not match a
	// prefix here
	view := newStubView("", "SCUS_94163", "MAIN.EXE")
	rec, err := identifyPlayStation(view, "", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("ID"); got != "SCUS-94163" {
		t.Errorf("ID = %q, want the serial from the volume ID", got)
	}
	if got := rec.Get("title"); got != "Gran Turismo" {
		t.Errorf("title = %q", got)
	}
}

func TestIdentifyPlayStation_FilenameFallback(t *testing.T) {
	view := newStubView("", "GAME", "MAIN.EXE")
	rec, err := identifyPlayStation(view, "/roms/Gran Turismo (USA).bin.gz", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("title"); got != "Gran Turismo" {
		t.Errorf("title = %q, want the entry stored under the disc name", got)
	}
}

func TestIdentifyPlayStation_RootFileBeatsVolume(t *testing.T) {
	// Both the root filename and the volume ID carry valid serials of
	// different games; the root scan must win
	view := newStubView("", "SCUS_94163", "SLUS_005.94")
	rec, err := identifyPlayStation(view, "", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("ID"); got != "SLUS-00594" {
		t.Errorf("ID = %q, want the serial from the root filename", got)
	}
	if got := rec.Get("title"); got != "Crash Bandicoot 3 - Warped" {
		t.Errorf("title = %q, want the root filename match", got)
	}
}

func TestIdentifyPlayStation_UUIDMergePrecedence(t *testing.T) {
	db := newPSXTestDB()
	db.Consoles["PSX"]["SLUS_00594"]["uuid"] = "1998-10-01-00-00-00-00"

	view := newStubView("2024-01-01-12-30-00-00", "CRASH3", "SLUS_005.94")

	rec, err := identifyPlayStation(view, "", ConsolePSX, db, Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("uuid"); got != "2024-01-01-12-30-00-00" {
		t.Errorf("uuid = %q, want the disc value without prefer-gamedb", got)
	}

	rec, err = identifyPlayStation(view, "", ConsolePSX, db, Options{PreferGameDB: true})
	if err != nil {
		t.Fatalf("identifyPlayStation() failed: %v", err)
	}
	if got := rec.Get("uuid"); got != "1998-10-01-00-00-00-00" {
		t.Errorf("uuid = %q, want the database value with prefer-gamedb", got)
	}
}

func TestIdentifyPlayStation_NotFound(t *testing.T) {
	view := newStubView("1999-09-09-00-00-00-00", "UNKNOWN", "MAIN.EXE")
	rec, err := identifyPlayStation(view, "/tmp/unknown.bin", ConsolePSX, newPSXTestDB(), Options{})
	if err != nil {
		t.Fatalf("identifyPlayStation() should not fail on a database miss: %v", err)
	}
	if rec.Has("ID") {
		t.Errorf("ID should be absent on a miss, got %q", rec.Get("ID"))
	}
	if got := rec.Get("volume_ID"); got != "UNKNOWN" {
		t.Errorf("volume_ID = %q", got)
	}
	if got := rec.Get("root_files"); got != "MAIN.EXE" {
		t.Errorf("root_files = %q", got)
	}
}

func TestSerialFromVolumeID(t *testing.T) {
	testCases := []struct {
		name     string
		volume   string
		expected string
	}{
		{"plain", "SLUS_00594", "SLUS_00594"},
		{"dashed", "SLUS-00594", "SLUS_00594"},
		{"two_underscores", "SLPS_025.00_TAIKEN", "SLPS_025.00"},
		{"three_underscores", "MY_DISC_VOL_1", "MY_DISC_VOL_1"},
		{"no_separator", "CRASH3", "CRASH3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := serialFromVolumeID(tc.volume); got != tc.expected {
				t.Errorf("serialFromVolumeID(%q) = %q, want %q", tc.volume, got, tc.expected)
			}
		})
	}
}

func TestSerialFromFilename(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{"serial_name", "/roms/SLUS_00594.bin", "SLUS_00594"},
		{"disc_name", "/roms/Gran Turismo (USA).cue", "Gran Turismo (USA)"},
		{"gzipped", "/roms/Gran Turismo (USA).bin.gz", "Gran Turismo (USA)"},
		{"no_extension", "/roms/SLUS_00594", "SLUS_00594"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := serialFromFilename(tc.path); got != tc.expected {
				t.Errorf("serialFromFilename(%q) = %q, want %q", tc.path, got, tc.expected)
			}
		})
	}
}
