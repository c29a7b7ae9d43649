package consoles

import (
	"reflect"
	"testing"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

func TestRecordOrdering(t *testing.T) {
	rec := NewRecord()
	rec.Set("ID", "SLUS-00594")
	rec.Set("uuid", "x")
	rec.Set("ID", "SLUS-00152")

	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"ID", "uuid"}) {
		t.Errorf("Keys() = %v, resetting a field should keep its position", got)
	}
	if got := rec.Get("ID"); got != "SLUS-00152" {
		t.Errorf("Get(ID) = %q", got)
	}
	if rec.Len() != 2 {
		t.Errorf("Len() = %d", rec.Len())
	}
}

func TestRecordMerge(t *testing.T) {
	entry := gamedb.Entry{"title": "Gran Turismo", "region": "NTSC-U"}

	t.Run("fills gaps", func(t *testing.T) {
		rec := NewRecord()
		rec.Set("title", "GT")
		rec.Merge(entry, false)
		if got := rec.Get("title"); got != "GT" {
			t.Errorf("decoded field should win without preferDB, got %q", got)
		}
		if got := rec.Get("region"); got != "NTSC-U" {
			t.Errorf("missing field should be filled, got %q", got)
		}
	})

	t.Run("prefer database", func(t *testing.T) {
		rec := NewRecord()
		rec.Set("title", "GT")
		rec.Merge(entry, true)
		if got := rec.Get("title"); got != "Gran Turismo" {
			t.Errorf("database field should win with preferDB, got %q", got)
		}
	})
}

func TestParseConsole(t *testing.T) {
	if console, err := ParseConsole("psx"); err != nil || console != ConsolePSX {
		t.Errorf("ParseConsole(psx) = %v, %v", console, err)
	}
	if console, err := ParseConsole("SegaCD"); err != nil || console != ConsoleSegaCD {
		t.Errorf("ParseConsole(SegaCD) = %v, %v", console, err)
	}
	if _, err := ParseConsole("Dreamcast"); err == nil {
		t.Error("ParseConsole() should reject unsupported consoles")
	}
}
