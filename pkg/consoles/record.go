package consoles

import (
	"sort"

	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Record is an insertion-ordered field to value mapping, so identification
// output always lists fields in the order they were resolved.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores a field, keeping its original position when it already exists
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key, empty when absent
func (r *Record) Get(key string) string {
	return r.values[key]
}

// Has reports whether key is present
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the field names in insertion order
func (r *Record) Keys() []string {
	return r.keys
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.keys)
}

// Merge folds a database entry into the record. Database fields fill gaps;
// with preferDB they also overwrite decoded fields. Entry keys are applied
// in sorted order since stored entries carry no ordering.
func (r *Record) Merge(entry gamedb.Entry, preferDB bool) {
	keys := make([]string, 0, len(entry))
	for key := range entry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if preferDB || !r.Has(key) {
			r.Set(key, entry[key])
		}
	}
}
