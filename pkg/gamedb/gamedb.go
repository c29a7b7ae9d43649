// Package gamedb loads, queries and builds the packed game metadata
// database used for identification.
package gamedb

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/hansbonini/gameidtools/pkg/common"
)

// DefaultURL is where a prebuilt database is published
const DefaultURL = "https://github.com/hansbonini/gameidtools/releases/latest/download/gameid.db.gz"

// DefaultFetchTimeout bounds database downloads
const DefaultFetchTimeout = 30 * time.Second

// keySep joins the parts of composite lookup keys. It never occurs in the
// fields it joins.
const keySep = "|"

// Entry is the metadata stored for one game, keyed by field name
type Entry map[string]string

// DB is the full identification database: per-console entry maps plus
// per-console serial prefixes sorted by frequency.
type DB struct {
	Consoles map[string]map[string]Entry
	Prefixes map[string][]string
}

// New returns an empty database
func New() *DB {
	return &DB{
		Consoles: make(map[string]map[string]Entry),
		Prefixes: make(map[string][]string),
	}
}

// Lookup returns the entry stored for key under the given console table
func (db *DB) Lookup(console, key string) (Entry, bool) {
	if db == nil {
		return nil, false
	}
	table, ok := db.Consoles[console]
	if !ok {
		return nil, false
	}
	entry, ok := table[key]
	if ok {
		common.LogDebug(common.DebugDatabaseHit, console, key)
	} else {
		common.LogDebug(common.DebugDatabaseMiss, console, key)
	}
	return entry, ok
}

// IDPrefixes returns the serial prefixes seen for a console, most frequent
// first
func (db *DB) IDPrefixes(console string) []string {
	if db == nil {
		return nil
	}
	return db.Prefixes[console]
}

// KeyGB builds the composite lookup key for Game Boy and Game Boy Color
// cartridges, which share one table keyed by internal title and global
// checksum.
func KeyGB(internalTitle string, globalChecksum uint16) string {
	return fmt.Sprintf("%s%s0x%04X", internalTitle, keySep, globalChecksum)
}

// KeySNES builds the composite lookup key for Super Nintendo cartridges
func KeySNES(developerID uint8, internalTitleHex string, romVersion uint8, checksum uint16) string {
	return fmt.Sprintf("%d%s%s%s%d%s%d", developerID, keySep, internalTitleHex, keySep, romVersion, keySep, checksum)
}

// KeyNeoGeoCD builds the composite lookup key for Neo Geo CD discs
func KeyNeoGeoCD(uuid, volumeID string) string {
	return uuid + keySep + volumeID
}

// Load reads a database blob from disk. Files ending in .gz are
// decompressed transparently.
func Load(path string) (*DB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadDatabase, err)
	}
	defer file.Close()

	db := New()
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToLoadDatabase, err)
		}
		defer gz.Close()
		if err := gob.NewDecoder(gz).Decode(db); err != nil {
			return nil, common.FormatError(common.ErrFailedToLoadDatabase, err)
		}
		return db, nil
	}
	if err := gob.NewDecoder(file).Decode(db); err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadDatabase, err)
	}
	return db, nil
}

// Save writes a database blob to disk, gzip-compressed when the path ends
// in .gz
func Save(path string, db *DB) error {
	file, err := os.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToSaveDatabase, err)
	}
	defer file.Close()

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz := gzip.NewWriter(file)
		if err := gob.NewEncoder(gz).Encode(db); err != nil {
			gz.Close()
			return common.FormatError(common.ErrFailedToSaveDatabase, err)
		}
		return gz.Close()
	}
	return gob.NewEncoder(file).Encode(db)
}

// Fetch downloads a database blob with a bounded timeout. Any failure falls
// back to the embedded seed so identification can still proceed on header
// data and common serials.
func Fetch(url string, timeout time.Duration) (*DB, error) {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(url)
	if err != nil {
		common.LogWarn("%s: %v", common.ErrFailedToFetchDatabase, err)
		common.LogInfo(common.InfoDatabaseSeeded)
		return Seed()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		common.LogWarn("%s: HTTP %d", common.ErrFailedToFetchDatabase, resp.StatusCode)
		common.LogInfo(common.InfoDatabaseSeeded)
		return Seed()
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		common.LogWarn("%s: %v", common.ErrFailedToFetchDatabase, err)
		common.LogInfo(common.InfoDatabaseSeeded)
		return Seed()
	}
	defer gz.Close()

	db := New()
	if err := gob.NewDecoder(gz).Decode(db); err != nil {
		common.LogWarn("%s: %v", common.ErrFailedToFetchDatabase, err)
		common.LogInfo(common.InfoDatabaseSeeded)
		return Seed()
	}
	common.LogInfo(common.InfoDatabaseFetched)
	return db, nil
}

// DefaultPath is where fetched databases are cached between runs
func DefaultPath() string {
	path, err := xdg.CacheFile("gameidtools/gameid.db.gz")
	if err != nil {
		return "gameid.db.gz"
	}
	return path
}
