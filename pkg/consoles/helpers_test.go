package consoles

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hansbonini/gameidtools/pkg/disc"
)

func writeROMFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// stubView is an in-memory disc filesystem for resolver tests
type stubView struct {
	uuid     string
	volume   string
	files    []disc.FileEntry
	contents map[string][]byte
}

func (s *stubView) SystemID() string       { return "PLAYSTATION" }
func (s *stubView) VolumeID() string       { return s.volume }
func (s *stubView) PublisherID() string    { return "" }
func (s *stubView) DataPreparerID() string { return "" }
func (s *stubView) UUID() string           { return s.uuid }
func (s *stubView) Close() error           { return nil }

func (s *stubView) RootFiles() ([]disc.FileEntry, error) {
	return s.files, nil
}

func (s *stubView) ReadFile(entry disc.FileEntry) ([]byte, error) {
	data, ok := s.contents[entry.Path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", entry.Path)
	}
	return data, nil
}

func newStubView(uuid, volume string, files ...string) *stubView {
	s := &stubView{uuid: uuid, volume: volume, contents: map[string][]byte{}}
	for _, name := range files {
		s.files = append(s.files, disc.FileEntry{Path: "/" + name, LBA: 20, Size: 8})
	}
	return s
}

func (s *stubView) withContent(name string, data []byte) *stubView {
	s.contents["/"+name] = data
	return s
}
