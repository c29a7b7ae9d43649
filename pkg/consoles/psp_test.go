package consoles

import (
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

func TestIdentifyPSPView(t *testing.T) {
	db := gamedb.New()
	db.Consoles["PSP"] = map[string]gamedb.Entry{
		"ULUS_10041": {"title": "Grand Theft Auto - Liberty City Stories", "region": "NTSC-U"},
	}

	view := newStubView("2005-10-24-00-00-00-00", "GTA_LCS", "UMD_DATA.BIN", "PSP_GAME").
		withContent("UMD_DATA.BIN", []byte("ULUS-10041|0001|G|1"))

	rec, err := identifyPSPView(view, db, Options{})
	if err != nil {
		t.Fatalf("identifyPSPView() failed: %v", err)
	}
	if got := rec.Get("ID"); got != "ULUS-10041" {
		t.Errorf("ID = %q, want %q", got, "ULUS-10041")
	}
	if got := rec.Get("title"); got != "Grand Theft Auto - Liberty City Stories" {
		t.Errorf("title = %q", got)
	}
	if got := rec.Get("volume_ID"); got != "GTA_LCS" {
		t.Errorf("volume_ID = %q", got)
	}
}

func TestIdentifyPSPView_NoUMDData(t *testing.T) {
	view := newStubView("", "GAME", "PSP_GAME")
	if _, err := identifyPSPView(view, gamedb.New(), Options{}); err == nil {
		t.Error("identifyPSPView() should fail without UMD_DATA.BIN")
	}
}
