package disc

import (
	"os"
	"path/filepath"

	"github.com/hansbonini/gameidtools/pkg/common"
)

// MountedDir adapts an already-mounted disc directory to the View interface.
// Only the top level is walked; block addresses are zero since the medium is
// a plain filesystem.
type MountedDir struct {
	root   string
	uuid   string
	volume string
}

// OpenMountedDir opens a mounted disc directory. The uuid and volume label
// cannot be recovered from a mounted filesystem, so callers may supply them;
// the volume falls back to the directory base name.
func OpenMountedDir(path, uuid, volume string) (*MountedDir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenInput, err)
	}
	if !info.IsDir() {
		return nil, common.FormatErrorString(common.ErrFailedToOpenInput, "%s is not a directory", path)
	}
	if volume == "" {
		volume = filepath.Base(filepath.Clean(path))
	}
	return &MountedDir{root: path, uuid: uuid, volume: volume}, nil
}

func (m *MountedDir) SystemID() string       { return "" }
func (m *MountedDir) VolumeID() string       { return m.volume }
func (m *MountedDir) PublisherID() string    { return "" }
func (m *MountedDir) DataPreparerID() string { return "" }
func (m *MountedDir) UUID() string           { return m.uuid }

// RootFiles lists the regular files directly under the mount point
func (m *MountedDir) RootFiles() ([]FileEntry, error) {
	dirents, err := os.ReadDir(m.root)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadDirectory, err)
	}
	var files []FileEntry
	for _, dirent := range dirents {
		if dirent.IsDir() {
			continue
		}
		info, err := dirent.Info()
		if err != nil {
			continue
		}
		size, err := common.SafeInt64ToUint32(info.Size())
		if err != nil {
			continue
		}
		files = append(files, FileEntry{Path: "/" + dirent.Name(), Size: size})
	}
	return files, nil
}

// ReadFile reads a file previously returned by RootFiles
func (m *MountedDir) ReadFile(entry FileEntry) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(m.root, filepath.Base(entry.Path)))
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFile, err)
	}
	return data, nil
}

func (m *MountedDir) Close() error { return nil }
