package common

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Global variable to control debug output
var VerboseMode bool = false

// logger writes human-readable output to stderr so identification results on
// stdout stay machine-parseable
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger().
	Level(zerolog.InfoLevel)

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
}

// Error messages
const (
	ErrFailedToOpenInput       = "failed to open input file"
	ErrFailedToStatInput       = "failed to stat input file"
	ErrFailedToReadHeader      = "failed to read header"
	ErrFailedToReadCueSheet    = "failed to read cue sheet"
	ErrFailedToReadPathTable   = "failed to read path table"
	ErrFailedToReadDirectory   = "failed to read directory extent"
	ErrFailedToReadFile        = "failed to read file from disc image"
	ErrFailedToLoadDatabase    = "failed to load database"
	ErrFailedToSaveDatabase    = "failed to save database"
	ErrFailedToFetchDatabase   = "failed to fetch database"
	ErrFailedToParseSeed       = "failed to parse embedded database seed"
	ErrFailedToReadConfig      = "failed to read config file"
	ErrFailedToParseConfig     = "failed to parse config file"
	ErrFailedToCreateOutput    = "failed to create output file"
	ErrFailedToWriteOutput     = "failed to write output"
	ErrFailedToDetectConsole   = "failed to detect console"
	ErrFailedToIdentifyGame    = "failed to identify game"
	ErrFailedToReadGameDBFiles = "failed to read GameDB export directory"
)

// Info messages
const (
	InfoConsoleDetected   = "Console detected"
	InfoConsoleProvided   = "Console provided by user"
	InfoDatabaseLoaded    = "Database loaded"
	InfoDatabaseFetched   = "Database fetched"
	InfoDatabaseSeeded    = "Falling back to embedded database seed"
	InfoDatabaseSaved     = "Database saved"
	InfoGameIdentified    = "Game identified"
	InfoRecordWritten     = "Record written"
	InfoUsingMountedDisc  = "Input is a mounted disc directory"
	InfoBuildConsoleDone  = "Console table built"
	InfoBuildDatabaseDone = "Database build complete"
)

// Debug messages
const (
	DebugBlockSize         = "Block size %d, block offset 0x%X, total size %d"
	DebugCueTrackFile      = "Cue sheet track file: %s (%d bytes)"
	DebugPVDFound          = "Primary volume descriptor found at offset 0x%X"
	DebugPathTableEntry    = "Path table entry %d: %q (LBA %d, parent %d)"
	DebugRootFile          = "Root file: %s (LBA %d, MSF %s, %d bytes)"
	DebugSerialCandidate   = "Serial candidate %q from prefix %q"
	DebugSerialFromVolume  = "Serial candidate %q from volume ID"
	DebugSerialFromName    = "Serial candidate %q from input filename"
	DebugDatabaseHit       = "Database hit for %s key %q"
	DebugDatabaseMiss      = "Database miss for %s key %q"
	DebugCopierHeader      = "Copier header detected, skipping %d bytes"
	DebugHeaderCandidate   = "Trying header candidate at offset 0x%X"
	DebugMagicWordFound    = "Magic word %q found at offset 0x%X"
	DebugConsoleByExt      = "Console %s matched by extension %s"
	DebugConsoleByMagic    = "Console %s matched by magic word"
	DebugConsoleByDiscFile = "Console %s matched by disc file %s"
)

// Warning messages
const (
	WarnInvalidLogo        = "Boot logo does not match, ROM may be corrupted or unlicensed"
	WarnChecksumMismatch   = "Header checksum mismatch: expected 0x%02X, got 0x%02X"
	WarnConsoleUnknown     = "Unable to detect console, specify one with --console"
	WarnGameNotInDatabase  = "Game not found in database, emitting header fields only"
	WarnNoDatabase         = "No database available, emitting header fields only"
	WarnSkippingDataFile   = "Skipping unreadable GameDB export %s: %v"
	WarnNoPathTableEntries = "Path table has no entries"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Info().Msgf(message, args...)
	} else {
		logger.Info().Msg(message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Warn().Msgf(message, args...)
	} else {
		logger.Warn().Msg(message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Error().Msgf(message, args...)
	} else {
		logger.Error().Msg(message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		logger.Debug().Msgf(message, args...)
	} else {
		logger.Debug().Msg(message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
