package consoles

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/disc"
)

// Extensions that pin a console without looking at the content
var consoleExtensions = map[string]Console{
	".gb":  ConsoleGB,
	".gbc": ConsoleGBC,
	".gba": ConsoleGBA,
	".srl": ConsoleGBA,
	".gcm": ConsoleGC,
	".gen": ConsoleGenesis,
	".md":  ConsoleGenesis,
	".smd": ConsoleGenesis,
	".z64": ConsoleN64,
	".v64": ConsoleN64,
	".n64": ConsoleN64,
	".ndd": ConsoleN64,
	".sfc": ConsoleSNES,
	".smc": ConsoleSNES,
	".swc": ConsoleSNES,
}

// Extensions worth probing as ISO9660 disc images
var discExtensions = map[string]bool{
	".iso": true,
	".bin": true,
	".cue": true,
	".img": true,
	".mdf": true,
}

// DetectConsole guesses the console for an input path. It checks the file
// extension first, then content magic words, then disc filesystem clues.
// An empty console with a nil error means no rule matched.
func DetectConsole(path string) (Console, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", common.FormatError(common.ErrFailedToStatInput, err)
	}
	if info.IsDir() {
		return detectMountedDisc(path)
	}

	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	ext := filepath.Ext(name)

	if console, ok := consoleExtensions[ext]; ok {
		common.LogDebug(common.DebugConsoleByExt, console, ext)
		return console, nil
	}

	// Cue sheets only reference the data; scan the first track file
	scanPath := path
	if ext == ".cue" {
		if tracks, err := disc.CueFiles(path); err == nil && len(tracks) > 0 {
			scanPath = tracks[0]
		}
	}

	header, err := readHead(scanPath, SEGACD_HEADER_READ_SIZE)
	if err != nil {
		return "", err
	}
	// Sega CD before Genesis: a Sega CD boot sector also carries a
	// Mega Drive header copy
	switch {
	case findGCMagic(header) >= 0:
		common.LogDebug(common.DebugConsoleByMagic, ConsoleGC)
		return ConsoleGC, nil
	case findSegaCDMagic(header) >= 0:
		common.LogDebug(common.DebugConsoleByMagic, ConsoleSegaCD)
		return ConsoleSegaCD, nil
	case findGenesisMagic(header) >= 0:
		common.LogDebug(common.DebugConsoleByMagic, ConsoleGenesis)
		return ConsoleGenesis, nil
	case findSaturnMagic(header) >= 0:
		common.LogDebug(common.DebugConsoleByMagic, ConsoleSaturn)
		return ConsoleSaturn, nil
	}

	if discExtensions[ext] {
		return detectDiscImage(path)
	}
	return "", nil
}

func detectDiscImage(path string) (Console, error) {
	img, err := disc.OpenImage(path, false)
	if err != nil {
		return "", nil
	}
	view, err := disc.OpenISO9660(img)
	if err != nil {
		img.Close()
		return "", nil
	}
	defer view.Close()
	return detectFromView(view)
}

func detectMountedDisc(path string) (Console, error) {
	view, err := disc.OpenMountedDir(path, "", "")
	if err != nil {
		return "", err
	}
	defer view.Close()
	return detectFromView(view)
}

// detectFromView inspects the root directory of an ISO9660 filesystem for
// console-specific boot files
func detectFromView(view disc.View) (Console, error) {
	entries, err := view.RootFiles()
	if err != nil {
		return "", nil
	}
	var systemCNF *disc.FileEntry
	for i, entry := range entries {
		name := strings.ToUpper(common.CleanFileName(strings.TrimPrefix(entry.Path, "/")))
		switch name {
		case "UMD_DATA.BIN":
			common.LogDebug(common.DebugConsoleByDiscFile, ConsolePSP, name)
			return ConsolePSP, nil
		case "IPL.TXT":
			common.LogDebug(common.DebugConsoleByDiscFile, ConsoleNeoGeoCD, name)
			return ConsoleNeoGeoCD, nil
		case "SYSTEM.CNF":
			systemCNF = &entries[i]
		}
	}
	if systemCNF != nil {
		data, err := view.ReadFile(*systemCNF)
		if err != nil {
			return "", nil
		}
		content := string(data)
		if strings.Contains(content, "BOOT2") {
			common.LogDebug(common.DebugConsoleByDiscFile, ConsolePS2, "SYSTEM.CNF")
			return ConsolePS2, nil
		}
		if strings.Contains(content, "BOOT") {
			common.LogDebug(common.DebugConsoleByDiscFile, ConsolePSX, "SYSTEM.CNF")
			return ConsolePSX, nil
		}
	}
	return "", nil
}
