package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"rokuterm/pkg/profile"
)

var (
	profileFontHeight int
	profileLogFile    string
)

// profileCmd groups the saved-target management commands.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved debug targets",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name> <host> [port]",
	Short: "Save a debug target under a name",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runProfileSave,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved debug targets",
	Args:    cobra.NoArgs,
	Aliases: []string{"ls"},
	RunE:    runProfileList,
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Delete a saved debug target",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm"},
	RunE:    runProfileDelete,
}

func init() {
	profileSaveCmd.Flags().IntVar(&profileFontHeight, "font-height", 0, "output window font height in pixels")
	profileSaveCmd.Flags().StringVar(&profileLogFile, "log-file", "", "default transcript file for this target")

	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileDeleteCmd)
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	name := args[0]

	target := profile.DefaultTarget()
	target.Transport.Host = args[1]
	target.FontHeight = profileFontHeight
	target.LogFile = profileLogFile

	if len(args) == 3 {
		port, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[2], err)
		}
		target.Transport.Port = port
	}

	if err := target.Validate(); err != nil {
		return err
	}

	manager := profile.NewFileManager("")
	if err := manager.SaveProfile(name, target); err != nil {
		return err
	}

	fmt.Printf("Saved profile '%s' -> %s\n", name, target.Transport.Addr())
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	manager := profile.NewFileManager("")

	profiles, err := manager.ListProfiles()
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Println("No saved profiles. Create one with 'rokuterm profile save'.")
		return nil
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })

	fmt.Printf("%-20s %-22s %s\n", "NAME", "TARGET", "LAST USED")
	for _, p := range profiles {
		fmt.Printf("%-20s %-22s %s\n",
			p.Name,
			p.Target.Transport.Addr(),
			p.LastUsedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	manager := profile.NewFileManager("")

	if err := manager.DeleteProfile(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted profile '%s'\n", args[0])
	return nil
}
