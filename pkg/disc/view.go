// Package disc provides random-access views over console disc images and
// mounted disc directories, including an ISO9660 filesystem reader.
package disc

// FileEntry describes a file reachable from a filesystem view.
// Paths are absolute within the disc and start with "/".
type FileEntry struct {
	Path string
	LBA  uint32
	Size uint32
}

// View is the capability set shared by disc images and mounted directories.
// Identifier accessors return empty strings when the backing medium has no
// equivalent field.
type View interface {
	SystemID() string
	VolumeID() string
	PublisherID() string
	DataPreparerID() string
	UUID() string
	RootFiles() ([]FileEntry, error)
	ReadFile(entry FileEntry) ([]byte, error)
	Close() error
}
