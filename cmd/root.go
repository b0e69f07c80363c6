// Package cmd implements the rokuterm command-line interface
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"rokuterm/pkg/profile"
)

var (
	// Root command flags
	verbose    bool
	outputFile string
	fontHeight int
	noWindow   bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "rokuterm [host] [port]",
		Short: "A terminal front-end for the Roku BrightScript debugger",
		Long: `rokuterm connects to a Roku device's BrightScript debugger port and
gives you a history-aware command line for debug commands, with the
debugger's streamed output rendered in a separate window with full
Unicode support.

The primary window edits commands (arrow keys, Home/End, Insert,
history on Up/Down/PgUp/PgDn); a second window shows decoded debugger
output. Type 'quit' to end the session; Ctrl-C breaks into the
debugger.`,
		Version:           "1.0.0",
		Args:              cobra.MaximumNArgs(2),
		RunE:              runRoot,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write a session debug log")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "log debug output to file")
	rootCmd.Flags().IntVarP(&fontHeight, "font-height", "f", 0, "output window font height in pixels")
	rootCmd.Flags().BoolVar(&noWindow, "no-window", false, "do not spawn the output window; attach one manually with 'rokuterm view'")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(profileCmd)
}

// runRoot runs a session against the positional host and port,
// falling back to the stock debugger address.
func runRoot(cmd *cobra.Command, args []string) error {
	target := profile.DefaultTarget()
	target.FontHeight = fontHeight
	target.LogFile = outputFile

	if len(args) >= 1 {
		target.Transport.Host = args[0]
	}
	if len(args) >= 2 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		target.Transport.Port = port
	}

	if err := target.Validate(); err != nil {
		return err
	}

	return runSession(target, noWindow)
}
