package cmd

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"rokuterm/pkg/surface"
)

// viewCmd renders the output window: it attaches to a running
// session's loopback stream and displays decoded debugger text in a
// scrolling view. Normally spawned by the session itself; can be run
// by hand in any terminal when the session uses --no-window.
var viewCmd = &cobra.Command{
	Use:   "view <addr>",
	Short: "Render a session's debugger output stream",
	Long: `Attach to a running rokuterm session and display its decoded debugger
output. The session prints the address to attach to when started with
--no-window; otherwise it spawns this viewer itself.

Keys: Up/Down/PgUp/PgDn scroll, End jumps to the tail, Ctrl-Q or Esc
closes the viewer.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	conn, err := net.DialTimeout("tcp", args[0], 10*time.Second)
	if err != nil {
		return fmt.Errorf("unable to attach to session at %s: %w", args[0], err)
	}
	defer conn.Close()

	view := surface.NewScreenSurface()
	if err := view.Start(); err != nil {
		return err
	}
	defer view.Close()

	// Pull the decoded stream onto the screen until the session ends.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		buffer := make([]byte, 4096)
		for {
			n, err := conn.Read(buffer)
			if n > 0 {
				if appendErr := view.Append(string(buffer[:n])); appendErr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	select {
	case <-view.Done():
		// User closed the window; drop the connection so the session
		// notices.
		return nil
	case <-readDone:
		// Session ended. Keep the window up so the tail of the output
		// stays readable until the user dismisses it.
		view.Append("\n[session ended - press Ctrl-Q to close]\n")
		<-view.Done()
		return nil
	}
}
