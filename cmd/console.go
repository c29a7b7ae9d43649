// Package cmd provides the command-line interface for console detection.
package cmd

import (
	"fmt"

	"github.com/hansbonini/gameidtools/pkg/common"
	"github.com/hansbonini/gameidtools/pkg/consoles"
	"github.com/spf13/cobra"
)

// consoleCmd runs the console detector on an input without identifying
// the game.
var consoleCmd = &cobra.Command{
	Use:   "console [input_file]",
	Short: "Detect the console of a ROM dump or disc image",
	Long: `Detect the console of a ROM dump or disc image.

Detection checks the file extension first, then content magic words,
then disc filesystem clues. The detected console name is printed on
stdout.

Examples:
  gameidtools console game.bin
  gameidtools console -v game.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose)

		console, err := consoles.DetectConsole(args[0])
		if err != nil {
			return common.FormatError(common.ErrFailedToDetectConsole, err)
		}
		if console == "" {
			return common.FormatErrorString(common.ErrFailedToDetectConsole, common.WarnConsoleUnknown)
		}
		fmt.Println(console)
		return nil
	},
}

// init initializes the console command with its flags.
func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
}
