// Package cmd provides the command-line interface for GameIDTools.
// GameIDTools identifies games from ROM dumps and disc images across
// cartridge and CD-based consoles.
package cmd

import (
	"os"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "gameidtools",
	SilenceErrors: true,
	SilenceUsage:  true,
	Short:         "Identify games from ROM dumps and disc images",
	Long: `GameIDTools - Identify games from ROM dumps and disc images.

Supported consoles:
  GB, GBA, GBC, GC, Genesis, N64, NeoGeoCD, PSP, PSX, PS2,
  Saturn, SegaCD, SNES

Examples:
  gameidtools identify -c PSX game.cue
  gameidtools identify game.sfc
  gameidtools console game.bin
  gameidtools db build ./gamedb-exports/ gameid.db.gz
  gameidtools db info gameid.db.gz

Use 'gameidtools [command] --help' for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		common.LogError("%v", err)
		os.Exit(1)
	}
}
