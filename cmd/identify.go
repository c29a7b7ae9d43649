// Package cmd provides the command-line interface for game identification.
// This file contains the identify command, which resolves a ROM dump or
// disc image to a metadata record.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/consoles"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
	"github.com/spf13/cobra"
)

// identifyCmd resolves a game input to a delimited key-value record.
var identifyCmd = &cobra.Command{
	Use:   "identify [input_file]",
	Short: "Identify a game from a ROM dump or disc image",
	Long: `Identify a game from a ROM dump or disc image.

The input can be a cartridge dump (optionally gzipped), a disc image
(.iso, .bin, .img, .mdf or a .cue sheet) or a mounted disc directory.
When no console is given, the console detector runs first.

The result is printed as one field per line, field name and value
separated by the output delimiter (tab by default).

Examples:
  gameidtools identify -c PSX game.cue
  gameidtools identify -c GB tetris.gb.gz
  gameidtools identify game.sfc
  gameidtools identify -d gameid.db.gz -o result.txt game.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		consoleName, _ := cmd.Flags().GetString("console")
		databasePath, _ := cmd.Flags().GetString("database")
		outputPath, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")
		preferGameDB, _ := cmd.Flags().GetBool("prefer-gamedb")
		discUUID, _ := cmd.Flags().GetString("disc-uuid")
		discLabel, _ := cmd.Flags().GetString("disc-label")

		if databasePath == "" {
			databasePath = cfg.Database
		}
		if delimiter == "" {
			delimiter = cfg.Delimiter
		}
		if !cmd.Flags().Changed("prefer-gamedb") {
			preferGameDB = cfg.PreferGameDB
		}

		console, err := resolveConsole(consoleName, input)
		if err != nil {
			return err
		}

		db, err := openDatabase(databasePath)
		if err != nil {
			return err
		}

		opts := consoles.Options{
			PreferGameDB: preferGameDB,
			DiscUUID:     discUUID,
			DiscLabel:    discLabel,
		}
		rec, err := consoles.Identify(input, console, db, opts)
		if err != nil {
			return common.FormatError(common.ErrFailedToIdentifyGame, err)
		}

		return writeRecord(rec, console, outputPath, delimiter)
	},
}

// resolveConsole uses the user-supplied console name or falls back to the
// content detector
func resolveConsole(name, input string) (consoles.Console, error) {
	if name != "" {
		console, err := consoles.ParseConsole(name)
		if err != nil {
			return "", err
		}
		common.LogDebug("%s: %s", common.InfoConsoleProvided, console)
		return console, nil
	}
	console, err := consoles.DetectConsole(input)
	if err != nil {
		return "", common.FormatError(common.ErrFailedToDetectConsole, err)
	}
	if console == "" {
		return "", common.FormatErrorString(common.ErrFailedToDetectConsole, common.WarnConsoleUnknown)
	}
	common.LogInfo("%s: %s", common.InfoConsoleDetected, console)
	return console, nil
}

// openDatabase loads the database from disk, fetching the published blob
// when no usable local copy exists
func openDatabase(path string) (*gamedb.DB, error) {
	if path == "" {
		path = gamedb.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		db, err := gamedb.Load(path)
		if err != nil {
			return nil, err
		}
		common.LogDebug("%s: %s", common.InfoDatabaseLoaded, path)
		return db, nil
	}

	db, err := gamedb.Fetch(gamedb.DefaultURL, gamedb.DefaultFetchTimeout)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToFetchDatabase, err)
	}
	if err := gamedb.Save(path, db); err != nil {
		common.LogDebug("%s: %v", common.ErrFailedToSaveDatabase, err)
	}
	return db, nil
}

// writeRecord prints the record one field per line in insertion order
func writeRecord(rec *consoles.Record, console consoles.Console, outputPath, delimiter string) error {
	var out io.Writer = os.Stdout
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return common.FormatError(common.ErrFailedToCreateOutput, err)
		}
		defer file.Close()
		out = file
	}

	if _, err := fmt.Fprintf(out, "console%s%s\n", delimiter, console); err != nil {
		return common.FormatError(common.ErrFailedToWriteOutput, err)
	}
	for _, key := range rec.Keys() {
		if _, err := fmt.Fprintf(out, "%s%s%s\n", key, delimiter, rec.Get(key)); err != nil {
			return common.FormatError(common.ErrFailedToWriteOutput, err)
		}
	}
	if outputPath != "" {
		common.LogInfo("%s: %s", common.InfoRecordWritten, outputPath)
	}
	return nil
}

// init initializes the identify command with its flags.
func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().StringP("console", "c", "", "Console of the input (detected from content when omitted)")
	identifyCmd.Flags().StringP("database", "d", "", "Path to the game database blob")
	identifyCmd.Flags().StringP("output", "o", "", "Write the record to a file instead of stdout")
	identifyCmd.Flags().String("delimiter", "", "Field delimiter for the output record (default tab)")
	identifyCmd.Flags().Bool("prefer-gamedb", false, "Let database fields overwrite decoded header fields")
	identifyCmd.Flags().String("disc-uuid", "", "Disc UUID for mounted disc directories")
	identifyCmd.Flags().String("disc-label", "", "Disc volume label for mounted disc directories")
	identifyCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
}
