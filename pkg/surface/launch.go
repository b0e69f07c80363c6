package surface

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// LaunchViewer spawns this executable's "view" subcommand in a new
// terminal window, attached to the given loopback address. The spawn
// mechanics are the platform-specific seam around the core: the
// session only needs the Surface handle that AwaitViewer returns.
func LaunchViewer(addr string, fontHeight int) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	args := []string{"view", addr}

	cmd, err := terminalCommand(self, args, fontHeight)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn output window: %w", err)
	}

	// The viewer owns its own lifetime; reap it in the background so
	// it does not linger as a zombie.
	go cmd.Wait()

	return nil
}

// terminalCommand builds the platform command that opens a new
// terminal window running the viewer. The font height is applied where
// the host emulator accepts one on its command line; elsewhere the
// window inherits the emulator's configured font.
func terminalCommand(self string, args []string, fontHeight int) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "windows":
		cmdArgs := append([]string{"/c", "start", "", self}, args...)
		return exec.Command("cmd.exe", cmdArgs...), nil
	case "darwin":
		script := fmt.Sprintf(`tell application "Terminal" to do script %q`, shellJoin(self, args))
		return exec.Command("osascript", "-e", script), nil
	default:
		// Try the common Linux terminal emulators in order.
		for _, term := range []string{"x-terminal-emulator", "gnome-terminal", "konsole", "xterm"} {
			if _, err := exec.LookPath(term); err != nil {
				continue
			}
			if term == "gnome-terminal" {
				return exec.Command(term, append([]string{"--", self}, args...)...), nil
			}
			termArgs := []string{}
			if term == "xterm" && fontHeight > 0 {
				termArgs = append(termArgs, "-fa", "Monospace", "-fs", strconv.Itoa(fontHeight))
			}
			termArgs = append(termArgs, "-e", self)
			return exec.Command(term, append(termArgs, args...)...), nil
		}
		return nil, fmt.Errorf("no terminal emulator found to host the output window")
	}
}

func shellJoin(self string, args []string) string {
	out := self
	for _, a := range args {
		out += " " + a
	}
	return out
}
