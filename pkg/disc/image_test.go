package disc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestOpenImage_BlockSizeDetection(t *testing.T) {
	testCases := []struct {
		name          string
		size          int
		rawDataOffset bool
		expectedBlock int64
		expectedOffs  int64
		expectErr     error
	}{
		{"cooked sectors", CD_SECTOR_COOKED * 4, false, 2048, 0, nil},
		{"raw sectors", CD_SECTOR_RAW * 3, false, 2352, 0, nil},
		{"raw sectors with data offset", CD_SECTOR_RAW * 3, true, 2352, PSX_RAW_DATA_OFFSET, nil},
		{"cooked sectors ignore data offset", CD_SECTOR_COOKED * 4, true, 2048, 0, nil},
		{"odd size", 1000, false, 0, 0, ErrInvalidFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "image.bin", make([]byte, tc.size))
			img, err := OpenImage(path, tc.rawDataOffset)
			if tc.expectErr != nil {
				if !errors.Is(err, tc.expectErr) {
					t.Fatalf("OpenImage() error = %v, want %v", err, tc.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenImage() failed: %v", err)
			}
			defer img.Close()

			if img.BlockSize != tc.expectedBlock {
				t.Errorf("BlockSize = %d, want %d", img.BlockSize, tc.expectedBlock)
			}
			if img.BlockOffset != tc.expectedOffs {
				t.Errorf("BlockOffset = %d, want %d", img.BlockOffset, tc.expectedOffs)
			}
		})
	}
}

func TestOpenImage_UnsupportedContainer(t *testing.T) {
	for _, ext := range []string{".zip", ".7z"} {
		path := writeTempFile(t, "game"+ext, []byte("archive"))
		_, err := OpenImage(path, false)
		if !errors.Is(err, ErrUnsupportedContainer) {
			t.Errorf("OpenImage(%s) error = %v, want ErrUnsupportedContainer", ext, err)
		}
	}
}

func TestOpenImage_CueSheet(t *testing.T) {
	dir := t.TempDir()

	track1 := bytes.Repeat([]byte{0xAA}, CD_SECTOR_RAW)
	track2 := bytes.Repeat([]byte{0xBB}, CD_SECTOR_RAW)
	if err := os.WriteFile(filepath.Join(dir, "track1.bin"), track1, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "track2.bin"), track2, 0644); err != nil {
		t.Fatal(err)
	}

	cue := "FILE \"track1.bin\" BINARY\n  TRACK 01 MODE2/2352\n" +
		"FILE \"track2.bin\" BINARY\n  TRACK 02 AUDIO\n"
	cuePath := filepath.Join(dir, "game.cue")
	if err := os.WriteFile(cuePath, []byte(cue), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := OpenImage(cuePath, false)
	if err != nil {
		t.Fatalf("OpenImage() failed: %v", err)
	}
	defer img.Close()

	if img.Size() != int64(2*CD_SECTOR_RAW) {
		t.Errorf("Size() = %d, want %d", img.Size(), 2*CD_SECTOR_RAW)
	}
	if img.BlockSize != CD_SECTOR_RAW {
		t.Errorf("BlockSize = %d, want %d", img.BlockSize, CD_SECTOR_RAW)
	}

	// Read spanning the track boundary
	buf := make([]byte, 4)
	if _, err := img.ReadAt(buf, int64(CD_SECTOR_RAW)-2); err != nil {
		t.Fatalf("ReadAt() failed: %v", err)
	}
	if !bytes.Equal(buf, []byte{0xAA, 0xAA, 0xBB, 0xBB}) {
		t.Errorf("ReadAt() across tracks = %v, want [AA AA BB BB]", buf)
	}

	block, err := img.ReadBlocks(1, 1)
	if err != nil {
		t.Fatalf("ReadBlocks() failed: %v", err)
	}
	if block[0] != 0xBB {
		t.Errorf("ReadBlocks(1, 1)[0] = 0x%02X, want 0xBB", block[0])
	}
}

func TestReadBlocks_Truncated(t *testing.T) {
	path := writeTempFile(t, "small.bin", make([]byte, CD_SECTOR_COOKED*2))
	img, err := OpenImage(path, false)
	if err != nil {
		t.Fatalf("OpenImage() failed: %v", err)
	}
	defer img.Close()

	if _, err := img.ReadBlocks(0, 2); err != nil {
		t.Errorf("ReadBlocks(0, 2) failed: %v", err)
	}
	if _, err := img.ReadBlocks(2, 1); !errors.Is(err, ErrTruncatedImage) {
		t.Errorf("ReadBlocks(2, 1) error = %v, want ErrTruncatedImage", err)
	}
	if _, err := img.ReadBlocks(0, 3); !errors.Is(err, ErrTruncatedImage) {
		t.Errorf("ReadBlocks(0, 3) error = %v, want ErrTruncatedImage", err)
	}
}
