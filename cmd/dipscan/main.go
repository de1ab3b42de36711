// cmd/dipscan/main.go
//
// Entry point for the dashboard TUI. Loads configuration, opens the
// session logbook and runs the bubbletea program against the configured
// analysis service.

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"dipscan/internal/apiclient"
	"dipscan/internal/config"
	"dipscan/internal/logbook"
	"dipscan/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to dipscan.yaml (defaults to ./dipscan.yaml)")
	flag.Parse()

	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "dipscan: stdout is not a terminal")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dipscan: %v\n", err)
		os.Exit(1)
	}

	book, err := logbook.Open(cfg.Client.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dipscan: %v\n", err)
		os.Exit(1)
	}

	client := apiclient.New(cfg.Client.APIBaseURL,
		apiclient.WithTimeout(cfg.Client.RequestTimeout.Std()))
	book.Info("dashboard starting, service at %s", client.BaseURL())

	p := tea.NewProgram(
		tui.NewApp(client, cfg, book),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dipscan: %v\n", err)
		os.Exit(1)
	}
}
