package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"rokuterm/pkg/profile"
	"rokuterm/pkg/session"
	"rokuterm/pkg/surface"
)

const (
	// How long to wait for a spawned output window to attach.
	spawnedViewerWait = 15 * time.Second
	// A manually attached viewer gets longer, the user has to type.
	manualViewerWait = 2 * time.Minute
)

// runSession wires up the output window, the transcript sink and the
// orchestrator for one debugger session.
func runSession(target profile.TargetConfig, noWindow bool) error {
	listener, err := surface.NewListener()
	if err != nil {
		return err
	}
	defer listener.Close()

	wait := manualViewerWait
	if noWindow {
		fmt.Printf("Attach the output window with:\n\n    rokuterm view %s\n\n", listener.Addr())
	} else {
		if err := surface.LaunchViewer(listener.Addr(), target.FontHeight); err != nil {
			return fmt.Errorf("failed to open output window: %w", err)
		}
		wait = spawnedViewerWait
	}

	out, err := listener.AwaitViewer(wait)
	if err != nil {
		return err
	}

	var transcript io.Writer
	if target.LogFile != "" {
		f, err := os.Create(target.LogFile)
		if err != nil {
			return fmt.Errorf("unable to open log file %s: %w", target.LogFile, err)
		}
		defer f.Close()
		transcript = f
	}

	var debugLog io.Writer
	if verbose {
		f, err := os.Create("rokuterm-debug.log")
		if err == nil {
			defer f.Close()
			debugLog = f
		}
	}

	config := session.Config{
		Transport:  target.Transport,
		Surface:    out,
		Transcript: transcript,
		DebugLog:   debugLog,
	}

	o, err := session.NewOrchestrator(config, nil)
	if err != nil {
		return err
	}

	runErr := o.Run()

	printSummary(o.Stats(), target)

	if runErr != nil {
		return fmt.Errorf("session ended: %w", runErr)
	}
	return nil
}

// printSummary prints the session traffic counters after the screen is
// released.
func printSummary(stats *session.Stats, target profile.TargetConfig) {
	sent, recv := stats.Snapshot()

	fmt.Printf("\n=== Debug Session Summary ===\n")
	fmt.Printf("Target: %s\n", target.Transport.Addr())
	fmt.Printf("Duration: %v\n", stats.Duration().Round(time.Second))
	fmt.Printf("Bytes Sent: %d\n", sent)
	fmt.Printf("Bytes Received: %d\n", recv)
	fmt.Printf("=============================\n")
}
