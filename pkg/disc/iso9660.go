package disc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
)

// ISO9660 layout constants
const (
	// ISO9660_PVD_SCAN_LIMIT bounds the signature scan; the primary volume
	// descriptor lives at block 16 so it always falls inside the first MiB
	// for both sector sizes
	ISO9660_PVD_SCAN_LIMIT = 1000000

	ISO9660_PVD_SIZE       = 2048
	ISO9660_PVD_BLOCK      = 16
	ISO9660_ROOT_DIR_START = 156
	ISO9660_ROOT_DIR_END   = 190
)

// iso9660Signature marks a primary volume descriptor (type 0x01 + "CD001")
var iso9660Signature = []byte{0x01, 'C', 'D', '0', '0', '1'}

// ErrNotISO9660 is returned when no primary volume descriptor can be located
var ErrNotISO9660 = errors.New("no ISO9660 primary volume descriptor found")

// pathTableEntry is one directory in the ISO9660 path table.
// The root entry has parent -1.
type pathTableEntry struct {
	name   string
	lba    uint32
	parent int
}

// ISO9660 reads an ISO9660 filesystem from a disc image. It implements View.
type ISO9660 struct {
	img         *Image
	pvd         []byte
	pathTable   []pathTableEntry
	blockOffset int64
}

// OpenISO9660 locates the primary volume descriptor on the image and parses
// the path table. The descriptor position also fixes the data offset for raw
// sector images, so block addresses resolve the same way for 2048-byte and
// 2352-byte images.
func OpenISO9660(img *Image) (*ISO9660, error) {
	limit := int64(ISO9660_PVD_SCAN_LIMIT)
	if img.Size() < limit {
		limit = img.Size()
	}
	head := make([]byte, limit)
	if _, err := img.ReadAt(head, 0); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}

	sig := bytes.Index(head, iso9660Signature)
	if sig < 0 {
		return nil, ErrNotISO9660
	}
	common.LogDebug(common.DebugPVDFound, sig)

	v := &ISO9660{
		img:         img,
		blockOffset: int64(sig) - ISO9660_PVD_BLOCK*img.BlockSize,
	}

	v.pvd = make([]byte, ISO9660_PVD_SIZE)
	if _, err := img.ReadAt(v.pvd, int64(sig)); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}

	if err := v.parsePathTable(); err != nil {
		return nil, err
	}
	return v, nil
}

// parsePathTable reads the little-endian path table referenced by the PVD
func (v *ISO9660) parsePathTable() error {
	size := common.ReadUint32LE(v.pvd, 132)
	lba := common.ReadUint32LE(v.pvd, 140)
	if size == 0 {
		common.LogWarn(common.WarnNoPathTableEntries)
		return nil
	}

	table := make([]byte, size)
	offset := v.blockOffset + int64(lba)*v.img.BlockSize
	if _, err := v.img.ReadAt(table, offset); err != nil {
		return common.FormatError(common.ErrFailedToReadPathTable, err)
	}

	for i := 0; i+8 <= len(table); {
		nameLen := int(table[i])
		if nameLen == 0 {
			break
		}
		if i+8+nameLen > len(table) {
			break
		}
		entry := pathTableEntry{
			name:   string(table[i+8 : i+8+nameLen]),
			lba:    common.ReadUint32LE(table, i+2),
			parent: int(common.ReadUint16LE(table, i+6)) - 1,
		}
		if common.IsSpecialDirEntry(entry.name) {
			entry.name = ""
			entry.parent = -1
		}
		common.LogDebug(common.DebugPathTableEntry, len(v.pathTable), entry.name, entry.lba, entry.parent)
		v.pathTable = append(v.pathTable, entry)

		i += 8 + nameLen
		if nameLen%2 == 1 {
			i++
		}
	}
	return nil
}

// dirPath reconstructs the absolute path of path table entry idx, with a
// trailing slash
func (v *ISO9660) dirPath(idx int) string {
	var parts []string
	for idx >= 0 && idx < len(v.pathTable) {
		entry := v.pathTable[idx]
		if entry.name != "" {
			parts = append([]string{entry.name}, parts...)
		}
		if entry.parent == idx {
			break
		}
		idx = entry.parent
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/") + "/"
}

// SystemID returns the trimmed system identifier from the PVD
func (v *ISO9660) SystemID() string {
	return common.DecodeTrim(v.pvd[8:40])
}

// VolumeID returns the trimmed volume identifier from the PVD
func (v *ISO9660) VolumeID() string {
	return common.DecodeTrim(v.pvd[40:72])
}

// PublisherID returns the trimmed publisher identifier from the PVD
func (v *ISO9660) PublisherID() string {
	return common.DecodeTrim(v.pvd[318:446])
}

// DataPreparerID returns the trimmed data preparer identifier from the PVD
func (v *ISO9660) DataPreparerID() string {
	return common.DecodeTrim(v.pvd[446:574])
}

// UUID returns the volume creation timestamp reformatted as
// YYYY-MM-DD-HH-MM-SS-CC. The 16-digit window is located by scanning the
// creation date region for its '$' or '.' terminator; timestamps that are
// not printable are returned as raw bytes.
func (v *ISO9660) UUID() string {
	start := 813
	for i := 813; i < 830; i++ {
		if v.pvd[i] == '$' || v.pvd[i] == '.' {
			start = i - 16
			break
		}
	}
	if start < 0 {
		start = 813
	}
	raw := v.pvd[start : start+16]
	if !common.IsPrintable(raw) {
		return string(raw)
	}
	s := string(raw)
	return fmt.Sprintf("%s-%s-%s-%s-%s-%s-%s",
		s[0:4], s[4:6], s[6:8], s[8:10], s[10:12], s[12:14], s[14:16])
}

// RootFiles lists the files in the root directory
func (v *ISO9660) RootFiles() ([]FileEntry, error) {
	return v.Files(true)
}

// Files lists files on the disc. With rootOnly set, only direct children of
// the root directory are returned.
func (v *ISO9660) Files(rootOnly bool) ([]FileEntry, error) {
	var files []FileEntry
	for idx, dir := range v.pathTable {
		if rootOnly && dir.parent != -1 {
			continue
		}
		base := v.dirPath(idx)
		entries, err := v.readDirectory(idx, dir.lba)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			entry.Path = base + entry.Path
			if rootOnly && strings.Count(entry.Path, "/") != 1 {
				continue
			}
			common.LogDebug(common.DebugRootFile, entry.Path, entry.LBA, common.LBAToMSF(entry.LBA), entry.Size)
			files = append(files, entry)
		}
	}
	return files, nil
}

// readDirectory parses the fixed-format records of one directory extent.
// The root directory length comes from its record inside the PVD; other
// directories are read one block at a time until the record stream ends.
func (v *ISO9660) readDirectory(idx int, lba uint32) ([]FileEntry, error) {
	length := int64(ISO9660_PVD_SIZE)
	if idx == 0 {
		rootRecord := v.pvd[ISO9660_ROOT_DIR_START:ISO9660_ROOT_DIR_END]
		if size := common.ExtractSizeFromDirRecord(rootRecord); size > 0 {
			length = int64(size)
		}
	}

	offset := v.blockOffset + int64(lba)*v.img.BlockSize
	if remaining := v.img.Size() - offset; length > remaining {
		length = remaining
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: directory at block %d", ErrTruncatedImage, lba)
	}
	data := make([]byte, length)
	if _, err := v.img.ReadAt(data, offset); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadDirectory, err)
	}

	var entries []FileEntry
	for pos := 0; pos < len(data); {
		recLen := int(data[pos])
		if recLen == 0 {
			// records never span sector payloads; skip to the next one
			next := (pos/CD_SECTOR_COOKED + 1) * CD_SECTOR_COOKED
			if next <= pos || next >= len(data) {
				break
			}
			pos = next
			continue
		}
		if pos+recLen > len(data) || recLen < 33 {
			break
		}
		record := data[pos : pos+recLen]
		pos += recLen

		nameLen := int(record[32])
		if 33+nameLen > recLen {
			continue
		}
		name := string(record[33 : 33+nameLen])
		if common.IsSpecialDirEntry(name) {
			continue
		}
		if record[25]&0x02 != 0 {
			// subdirectories are reached through the path table
			continue
		}
		entries = append(entries, FileEntry{
			Path: common.CleanFileName(name),
			LBA:  common.ExtractLBAFromDirRecord(record),
			Size: common.ExtractSizeFromDirRecord(record),
		})
	}
	return entries, nil
}

// ReadFile reads the contents of a file located by a previous listing
func (v *ISO9660) ReadFile(entry FileEntry) ([]byte, error) {
	offset := v.blockOffset + int64(entry.LBA)*v.img.BlockSize
	if offset < 0 || offset+int64(entry.Size) > v.img.Size() {
		return nil, fmt.Errorf("%w: %s", ErrTruncatedImage, entry.Path)
	}
	data := make([]byte, entry.Size)
	if _, err := v.img.ReadAt(data, offset); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFile, err)
	}
	return data, nil
}

// Close releases the underlying image
func (v *ISO9660) Close() error {
	return v.img.Close()
}
