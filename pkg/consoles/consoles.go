// Package consoles implements per-platform game identification: cartridge
// header decoders, disc serial resolvers and the console detector.
package consoles

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
)

// Console is one of the supported platforms
type Console string

// Supported consoles
const (
	ConsoleGB       Console = "GB"
	ConsoleGBA      Console = "GBA"
	ConsoleGBC      Console = "GBC"
	ConsoleGC       Console = "GC"
	ConsoleGenesis  Console = "Genesis"
	ConsoleN64      Console = "N64"
	ConsoleNeoGeoCD Console = "NeoGeoCD"
	ConsolePSP      Console = "PSP"
	ConsolePSX      Console = "PSX"
	ConsolePS2      Console = "PS2"
	ConsoleSaturn   Console = "Saturn"
	ConsoleSegaCD   Console = "SegaCD"
	ConsoleSNES     Console = "SNES"
)

// AllConsoles lists every supported console
var AllConsoles = []Console{
	ConsoleGB, ConsoleGBA, ConsoleGBC, ConsoleGC, ConsoleGenesis,
	ConsoleN64, ConsoleNeoGeoCD, ConsolePSP, ConsolePSX, ConsolePS2,
	ConsoleSaturn, ConsoleSegaCD, ConsoleSNES,
}

var (
	// ErrInvalidROM is returned when input data cannot be decoded as the
	// requested platform
	ErrInvalidROM = errors.New("invalid or corrupted ROM image")

	// ErrUnknownConsole is returned for console names outside the
	// supported set
	ErrUnknownConsole = errors.New("unknown console")
)

// Options tunes identification behavior
type Options struct {
	// PreferGameDB lets database fields overwrite decoded header fields
	PreferGameDB bool

	// DiscUUID and DiscLabel supply disc metadata that mounted
	// directories cannot provide themselves
	DiscUUID  string
	DiscLabel string
}

// ParseConsole resolves a user-supplied console name
func ParseConsole(name string) (Console, error) {
	for _, console := range AllConsoles {
		if strings.EqualFold(name, string(console)) {
			return console, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownConsole, name)
}

// Identify resolves the game at path for the given console, using the
// database when available. The returned record preserves field insertion
// order for output.
func Identify(path string, console Console, db *gamedb.DB, opts Options) (*Record, error) {
	switch console {
	case ConsoleGB, ConsoleGBC:
		return identifyGB(path, db, opts)
	case ConsoleGBA:
		return identifyGBA(path, db, opts)
	case ConsoleGC:
		return identifyGC(path, db, opts)
	case ConsoleGenesis:
		return identifyGenesis(path, db, opts)
	case ConsoleN64:
		return identifyN64(path, db, opts)
	case ConsoleSNES:
		return identifySNES(path, db, opts)
	case ConsoleSegaCD:
		return identifySegaCD(path, db, opts)
	case ConsoleSaturn:
		return identifySaturn(path, db, opts)
	case ConsolePSX, ConsolePS2:
		return identifyPlayStationPath(path, console, db, opts)
	case ConsolePSP:
		return identifyPSP(path, db, opts)
	case ConsoleNeoGeoCD:
		return identifyNeoGeoCD(path, db, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConsole, console)
	}
}

// readROM loads a full cartridge dump, decompressing .gz files
// transparently
func readROM(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenInput, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToOpenInput, err)
		}
		defer gz.Close()
		reader = gz
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenInput, err)
	}
	return data, nil
}

// readHead loads at most n leading bytes of a file, decompressing .gz
// files transparently. Short files yield short slices.
func readHead(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenInput, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToOpenInput, err)
		}
		defer gz.Close()
		reader = gz
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}
	return buf[:read], nil
}

// openView opens a disc image or mounted directory as a filesystem view
func openView(path string, console Console, opts Options) (disc.View, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToStatInput, err)
	}
	if info.IsDir() {
		common.LogDebug(common.InfoUsingMountedDisc)
		return disc.OpenMountedDir(path, opts.DiscUUID, opts.DiscLabel)
	}

	img, err := disc.OpenImage(path, console == ConsolePSX)
	if err != nil {
		return nil, err
	}
	view, err := disc.OpenISO9660(img)
	if err != nil {
		img.Close()
		return nil, err
	}
	return view, nil
}

// findMagic scans data[start:end] for the first occurrence of word
func findMagic(data, word []byte, start, end int) int {
	if end > len(data)-len(word)+1 {
		end = len(data) - len(word) + 1
	}
	for i := start; i < end; i++ {
		match := true
		for j := range word {
			if data[i+j] != word[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// fallbackTitle fills the title field from a decoded header field when the
// database provided none
func fallbackTitle(rec *Record, from string) {
	if rec.Get("title") == "" && rec.Get(from) != "" {
		rec.Set("title", rec.Get(from))
	}
}
