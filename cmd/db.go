// Package cmd provides the command-line interface for database
// maintenance: building a database blob from GameDB exports and
// inspecting an existing blob.
package cmd

import (
	"fmt"
	"sort"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/gamedb"
	"github.com/spf13/cobra"
)

// dbCmd represents the parent command for all database operations.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Build and inspect the game database",
	Long: `Build and inspect the game database.

Commands:
  build     Build a database blob from GameDB TSV exports
  info      Show table sizes of a database blob

Examples:
  gameidtools db build ./gamedb-exports/ gameid.db.gz
  gameidtools db info gameid.db.gz`,
}

// dbBuildCmd runs the offline ETL over a directory of GameDB TSV exports.
var dbBuildCmd = &cobra.Command{
	Use:   "build [export_directory] [output_file]",
	Short: "Build a database blob from GameDB TSV exports",
	Long: `Build a database blob from GameDB TSV exports.

The export directory is expected to contain one <Console>.data.tsv file
per console. Missing files are skipped. The output blob is gzip
compressed when the output path ends in .gz.

Example:
  gameidtools db build ./gamedb-exports/ gameid.db.gz`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportDir := args[0]
		outputFile := args[1]

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		db, err := gamedb.Build(exportDir)
		if err != nil {
			return err
		}
		if err := gamedb.Save(outputFile, db); err != nil {
			return err
		}
		common.LogInfo("%s: %s", common.InfoBuildDatabaseDone, outputFile)
		return nil
	},
}

// dbInfoCmd prints per-console entry counts of a database blob.
var dbInfoCmd = &cobra.Command{
	Use:   "info [database_file]",
	Short: "Show table sizes of a database blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := gamedb.Load(args[0])
		if err != nil {
			return err
		}

		consoles := make([]string, 0, len(db.Consoles))
		for console := range db.Consoles {
			consoles = append(consoles, console)
		}
		sort.Strings(consoles)

		total := 0
		for _, console := range consoles {
			count := len(db.Consoles[console])
			total += count
			fmt.Printf("%-10s %d entries\n", console, count)
			if prefixes := db.IDPrefixes(console); len(prefixes) > 0 {
				fmt.Printf("%-10s prefixes: %v\n", "", prefixes)
			}
		}
		fmt.Printf("%-10s %d entries\n", "total", total)
		return nil
	},
}

// init initializes the db command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbBuildCmd)
	dbCmd.AddCommand(dbInfoCmd)

	dbBuildCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
}
