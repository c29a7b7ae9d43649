// Package common provides common utilities for CD-ROM operations.
// This file contains functions for MSF conversion and CD-ROM related utilities.
package common

import "fmt"

// LBAToMSF converts LBA (Logical Block Address) to MSF (Minutes:Seconds:Frames) format
// LBA to MSF conversion: LBA + 150 (pregap)
func LBAToMSF(lba uint32) string {
	totalFrames := lba + 150

	minutes := totalFrames / (60 * 75)
	seconds := (totalFrames % (60 * 75)) / 75
	frames := totalFrames % 75

	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// CleanFileName removes version numbers from ISO9660 file names
func CleanFileName(fileName string) string {
	// Remove version numbers (e.g., "FILE.EXT;1" -> "FILE.EXT")
	if len(fileName) > 0 && fileName[len(fileName)-1] >= '0' && fileName[len(fileName)-1] <= '9' {
		if len(fileName) > 2 && fileName[len(fileName)-2] == ';' {
			return fileName[:len(fileName)-2]
		}
	}
	return fileName
}

// IsSpecialDirEntry checks if a directory entry is "." or ".."
func IsSpecialDirEntry(fileName string) bool {
	return fileName == "\x00" || fileName == "\x01"
}

// ExtractLBAFromDirRecord extracts LBA from ISO9660 directory record
func ExtractLBAFromDirRecord(dirRecord []byte) uint32 {
	if len(dirRecord) < 6 {
		return 0
	}
	// LBA is at offset 2 (little-endian)
	return ReadUint32LE(dirRecord, 2)
}

// ExtractSizeFromDirRecord extracts size from ISO9660 directory record
func ExtractSizeFromDirRecord(dirRecord []byte) uint32 {
	if len(dirRecord) < 14 {
		return 0
	}
	// Size is at offset 10 (little-endian)
	return ReadUint32LE(dirRecord, 10)
}
