package disc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
)

// CD sector sizes
const (
	CD_SECTOR_RAW    = 2352 // full sector with sync, header and error correction
	CD_SECTOR_COOKED = 2048 // user data only

	// PSX_RAW_DATA_OFFSET is where user data starts inside a raw Mode 2
	// Form 1 sector: sync(12) + header(4) + subheader(8)
	PSX_RAW_DATA_OFFSET = 0x18
)

var (
	// ErrUnsupportedContainer is returned for archive formats that must be
	// extracted before identification
	ErrUnsupportedContainer = errors.New("unsupported container format")

	// ErrInvalidFormat is returned when an image size matches no known
	// sector size
	ErrInvalidFormat = errors.New("image size is not a multiple of a known sector size")

	// ErrTruncatedImage is returned for reads past the end of the image
	ErrTruncatedImage = errors.New("read past end of disc image")
)

// segment is one file of a possibly multi-file disc image
type segment struct {
	file  *os.File
	start int64 // cumulative offset of this segment within the image
	size  int64
}

// Image exposes a disc image (single file or multi-track cue sheet) as one
// logical byte stream with block-level addressing.
type Image struct {
	segments    []segment
	BlockSize   int64
	BlockOffset int64
	totalSize   int64
}

// OpenImage opens a disc image file or cue sheet. When rawDataOffset is set
// and the image uses raw sectors, block reads skip the sector framing so
// block N starts at its user data.
func OpenImage(path string, rawDataOffset bool) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".7z" || ext == ".zip" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContainer, ext)
	}

	paths := []string{path}
	if ext == ".cue" {
		var err error
		paths, err = CueFiles(path)
		if err != nil {
			return nil, err
		}
	}

	img := &Image{}
	for _, p := range paths {
		file, err := os.Open(p)
		if err != nil {
			img.Close()
			return nil, common.FormatError(common.ErrFailedToOpenInput, err)
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			img.Close()
			return nil, common.FormatError(common.ErrFailedToStatInput, err)
		}
		img.segments = append(img.segments, segment{
			file:  file,
			start: img.totalSize,
			size:  info.Size(),
		})
		img.totalSize += info.Size()
		common.LogDebug(common.DebugCueTrackFile, p, info.Size())
	}

	switch {
	case img.totalSize > 0 && img.totalSize%CD_SECTOR_RAW == 0:
		img.BlockSize = CD_SECTOR_RAW
	case img.totalSize > 0 && img.totalSize%CD_SECTOR_COOKED == 0:
		img.BlockSize = CD_SECTOR_COOKED
	default:
		img.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFormat, img.totalSize)
	}

	if rawDataOffset && img.BlockSize == CD_SECTOR_RAW {
		img.BlockOffset = PSX_RAW_DATA_OFFSET
	}
	common.LogDebug(common.DebugBlockSize, img.BlockSize, img.BlockOffset, img.totalSize)

	return img, nil
}

// CueFiles returns the data file paths referenced by a cue sheet, in
// track order, resolved relative to the sheet itself.
func CueFiles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadCueSheet, err)
	}

	dir := filepath.Dir(path)
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "FILE") {
			continue
		}
		parts := strings.Split(line, "\"")
		if len(parts) < 2 {
			continue
		}
		name := parts[1]
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		paths = append(paths, name)
	}
	if len(paths) == 0 {
		return nil, common.FormatErrorString(common.ErrFailedToReadCueSheet, "no FILE entries in %s", path)
	}
	return paths, nil
}

// Size returns the total image size in bytes across all segments
func (img *Image) Size() int64 {
	return img.totalSize
}

// ReadAt reads from the logical byte stream formed by all segments.
// It implements io.ReaderAt.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	read := 0
	for _, seg := range img.segments {
		if read == len(p) {
			break
		}
		cur := off + int64(read)
		if cur >= seg.start+seg.size {
			continue
		}
		local := cur - seg.start
		avail := seg.size - local
		want := int64(len(p) - read)
		if want > avail {
			want = avail
		}
		n, err := seg.file.ReadAt(p[read:read+int(want)], local)
		read += n
		if err != nil && err != io.EOF {
			return read, err
		}
	}
	if read < len(p) {
		return read, io.EOF
	}
	return read, nil
}

// ReadBlocks reads count consecutive blocks starting at the given block
// address, honoring the configured block offset.
func (img *Image) ReadBlocks(lba int64, count int64) ([]byte, error) {
	offset := img.BlockOffset + lba*img.BlockSize
	length := count * img.BlockSize
	if offset < 0 || offset+length > img.totalSize {
		return nil, fmt.Errorf("%w: block %d count %d", ErrTruncatedImage, lba, count)
	}
	buf := make([]byte, length)
	if _, err := img.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", ErrTruncatedImage, lba, err)
	}
	return buf, nil
}

// Close closes all underlying track files
func (img *Image) Close() error {
	var first error
	for _, seg := range img.segments {
		if seg.file == nil {
			continue
		}
		if err := seg.file.Close(); err != nil && first == nil {
			first = err
		}
	}
	img.segments = nil
	return first
}
