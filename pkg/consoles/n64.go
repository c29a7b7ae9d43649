package consoles

import (
	"bytes"
	"fmt"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Nintendo 64 cartridge header layout
const (
	N64_HEADER_SIZE           = 0x40
	N64_INTERNAL_TITLE_OFFSET = 0x20
	N64_INTERNAL_TITLE_SIZE   = 20
	N64_CARTRIDGE_ID_OFFSET   = 0x3C
	N64_COUNTRY_CODE_OFFSET   = 0x3E
	N64_VERSION_OFFSET        = 0x3F
)

// First word of a big-endian (.z64) dump
var n64FirstWord = []byte{0x80, 0x37, 0x12, 0x40}

// n64ByteSwap swaps every byte pair, converting .v64 dumps to big-endian.
// Applying it twice restores the input.
func n64ByteSwap(data []byte) []byte {
	if len(data)%2 != 0 {
		return data
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 2 {
		out[i] = data[i+1]
		out[i+1] = data[i]
	}
	return out
}

// n64WordSwap reverses every 4-byte word, converting .n64 dumps to big-endian
func n64WordSwap(data []byte) []byte {
	if len(data)%4 != 0 {
		return data
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = data[i+3], data[i+2], data[i+1], data[i]
	}
	return out
}

// DecodeN64 extracts header fields from a Nintendo 64 dump, normalizing
// byte-swapped and word-swapped formats first
func DecodeN64(data []byte) (*Record, error) {
	if len(data) < N64_HEADER_SIZE {
		return nil, fmt.Errorf("%w: file smaller than cartridge header", ErrInvalidROM)
	}
	header := data[:N64_HEADER_SIZE]

	switch {
	case bytes.Equal(header[:4], n64FirstWord):
	case bytes.Equal(n64ByteSwap(header[:4]), n64FirstWord):
		header = n64ByteSwap(header)
	case bytes.Equal(n64WordSwap(header[:4]), n64FirstWord):
		header = n64WordSwap(header)
	default:
		return nil, fmt.Errorf("%w: invalid first word", ErrInvalidROM)
	}

	serial := fmt.Sprintf("%c%c%c",
		header[N64_CARTRIDGE_ID_OFFSET], header[N64_CARTRIDGE_ID_OFFSET+1],
		header[N64_COUNTRY_CODE_OFFSET])

	rec := NewRecord()
	rec.Set("ID", serial)
	rec.Set("internal_title", common.CleanString(header[N64_INTERNAL_TITLE_OFFSET:N64_INTERNAL_TITLE_OFFSET+N64_INTERNAL_TITLE_SIZE]))
	rec.Set("version", fmt.Sprintf("%d", header[N64_VERSION_OFFSET]))
	rec.Set("country_code", fmt.Sprintf("%c", header[N64_COUNTRY_CODE_OFFSET]))
	return rec, nil
}

// ValidateN64 reports whether the first word matches any dump format
func ValidateN64(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	word := data[:4]
	return bytes.Equal(word, n64FirstWord) ||
		bytes.Equal(n64ByteSwap(word), n64FirstWord) ||
		bytes.Equal(n64WordSwap(word), n64FirstWord)
}

func identifyN64(path string, db *gamedb.DB, opts Options) (*Record, error) {
	data, err := readHead(path, N64_HEADER_SIZE)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeN64(data)
	if err != nil {
		return nil, err
	}
	if id := rec.Get("ID"); id != "" {
		if entry, ok := db.Lookup("N64", id); ok {
			rec.Merge(entry, opts.PreferGameDB)
		} else {
			common.LogDebug(common.WarnGameNotInDatabase)
		}
	}
	fallbackTitle(rec, "internal_title")
	return rec, nil
}
