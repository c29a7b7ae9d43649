package gamedb

import (
	_ "embed"

	"github.com/hansbonini/gameidtools/pkg/common"
	"gopkg.in/yaml.v3"
)

// seedData is a small built-in database so the tool degrades gracefully when
// no database file is available and fetching fails. It carries the serial
// prefix tables, which the disc resolvers need even without metadata.
//
//go:embed seed.yaml
var seedData []byte

type seedFile struct {
	Consoles map[string]map[string]Entry `yaml:"consoles"`
	Prefixes map[string][]string         `yaml:"prefixes"`
}

// Seed returns the embedded fallback database
func Seed() (*DB, error) {
	var seed seedFile
	if err := yaml.Unmarshal(seedData, &seed); err != nil {
		return nil, common.FormatError(common.ErrFailedToParseSeed, err)
	}
	db := New()
	for console, table := range seed.Consoles {
		db.Consoles[console] = table
	}
	for console, prefixes := range seed.Prefixes {
		db.Prefixes[console] = prefixes
	}
	return db, nil
}
