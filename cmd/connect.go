package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rokuterm/pkg/profile"
)

// connectCmd runs a session against a saved profile.
var connectCmd = &cobra.Command{
	Use:   "connect <profile>",
	Short: "Connect to a saved debug target",
	Long: `Connect to a Roku debugger using a saved profile.

Examples:
  # Save a target, then connect by name
  rokuterm profile save livingroom 192.168.1.50
  rokuterm connect livingroom`,
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"open"},
	RunE:    runConnect,
}

func init() {
	connectCmd.Flags().BoolVar(&noWindow, "no-window", false, "do not spawn the output window")
}

func runConnect(cmd *cobra.Command, args []string) error {
	name := args[0]

	manager := profile.NewFileManager("")
	target, err := manager.LoadProfile(name)
	if err != nil {
		listProfilesHint(manager)
		return err
	}

	if verbose {
		fmt.Printf("Loading profile '%s' (%s)...\n", name, target.Transport.Addr())
	}

	return runSession(target, noWindow)
}

// listProfilesHint shows the available profile names when a lookup
// fails.
func listProfilesHint(manager profile.Manager) {
	profiles, err := manager.ListProfiles()
	if err != nil || len(profiles) == 0 {
		return
	}

	fmt.Println("Available profiles:")
	for _, p := range profiles {
		fmt.Printf("  - %s (%s)\n", p.Name, p.Target.Transport.Addr())
	}
}
