package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// explorerPages caps the heap so runaway traces stay inspectable.
const explorerPages = 256

func main() {
	// Parse flags first (before positional args)
	args := os.Args[1:]
	debugMode := false
	cfg := alloc.DefaultConfig

	filteredArgs := make([]string, 0, len(args))
	for _, arg := range args {
		switch arg {
		case "--debug", "-d":
			debugMode = true
		case "--weak-magic":
			cfg = alloc.ConfigWeakMagic
		case "--no-quick-lists":
			cfg = alloc.ConfigNoQuickLists
		default:
			filteredArgs = append(filteredArgs, arg)
		}
	}

	// Initialize logger (must be before any logging calls)
	closeLog, err := initLogging(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	defer closeLog()

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	if filteredArgs[0] == "--help" || filteredArgs[0] == "-h" {
		printHelp()
		os.Exit(0)
	}

	if filteredArgs[0] == "--version" || filteredArgs[0] == "-v" {
		fmt.Printf("heapexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	tracePath := filteredArgs[0]
	logger.Info("starting heapexplorer", "path", tracePath, "debug", debugMode, "config", cfg.Name)

	if _, err := os.Stat(tracePath); err != nil {
		logger.Error("trace file not found", "path", tracePath, "error", err)
		fmt.Fprintf(os.Stderr, "Error: trace file not found: %s\n", tracePath)
		os.Exit(1)
	}

	// Create the TUI model
	m := NewModel(tracePath, cfg, explorerPages)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Clean up resources
	if model, ok := finalModel.(Model); ok {
		if err := model.Close(); err != nil {
			logger.Warn("error closing resources", "error", err)
		}
	}

	logger.Info("heapexplorer exited normally")
}

// initLogging sends debug logs to a JSON file under ~/.heapkit/logs. The TUI
// owns the terminal, so logs never go to stderr.
func initLogging(debug bool) (func(), error) {
	noop := func() {}
	if !debug {
		logger.Init(logger.Options{})
		return noop, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return noop, err
	}
	logDir := filepath.Join(home, ".heapkit", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return noop, err
	}

	f, err := os.OpenFile(filepath.Join(logDir, "heapexplorer.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return noop, err
	}

	logger.Init(logger.Options{
		Enabled: true,
		Output:  f,
		JSON:    true,
		Level:   slog.LevelDebug,
	})
	return func() { _ = f.Close() }, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: heapexplorer [options] <trace-file>\n")
	fmt.Fprintf(os.Stderr, "Try 'heapexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("heapexplorer - Step through an allocation trace and watch the heap")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  heapexplorer [options] <trace-file>")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Replays an allocation trace one request at a time and shows every block,")
	fmt.Println("  the free lists, and the quick lists after each step.")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    n/→, p/←    Step forward/back one request")
	fmt.Println("    g, G        Jump to the start/end of the trace")
	fmt.Println("    ↑/k, ↓/j    Select a block")
	fmt.Println("    Enter       Show block details")
	fmt.Println("    x           Toggle payload previews")
	fmt.Println("    c           Copy the heap dump to the clipboard")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -d, --debug        Enable debug logging to ~/.heapkit/logs/")
	fmt.Println("      --weak-magic   Store headers without obfuscation")
	fmt.Println("      --no-quick-lists  Disable quick lists")
	fmt.Println("  -h, --help         Show this help message")
	fmt.Println("  -v, --version      Show version information")
	fmt.Println()
	fmt.Println("For non-interactive runs, use the 'heapctl' command instead.")
}
