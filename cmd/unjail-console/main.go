package main

import "github.com/pushchain/unjail-console/internal/ui"

func main() {
	// Must run before lipgloss or bubbletea first touch the terminal.
	ui.InitTerminal()

	Execute()
}
