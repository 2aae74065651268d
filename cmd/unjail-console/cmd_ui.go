package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/console"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/session"
	"github.com/pushchain/unjail-console/internal/ui"
)

type uiOptions struct {
	NoWait bool
}

func init() {
	var o uiOptions
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive unjail page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, o)
		},
	}
	cmd.Flags().BoolVar(&o.NoWait, "no-wait", false, "Do not follow accepted transactions until they are included")
	rootCmd.AddCommand(cmd)
}

func runUI(cmd *cobra.Command, o uiOptions) error {
	if !ui.Interactive() {
		return exitcodes.PreconditionError("the unjail page needs an interactive terminal; use 'simulate' or 'unjail' in scripts")
	}

	// The page owns the screen; logs go to a file with --debug, else nowhere.
	var logOut io.Writer = io.Discard
	if flagDebug {
		f, err := os.CreateTemp("", "unjail-console-*.log")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
		fmt.Fprintf(cmd.ErrOrStderr(), "debug log: %s\n", f.Name())
	}
	d, err := newDeps(logOut)
	if err != nil {
		return err
	}
	m, err := newPage(d, o)
	if err != nil {
		return err
	}

	_, runErr := tea.NewProgram(m, tea.WithAltScreen()).Run()
	ui.ResetTerminalAfterTUI()
	if d.Session.Phase() != session.Idle {
		d.Connector.Disconnect()
	}
	printSessionLog(d, cmd.OutOrStdout())
	return runErr
}

func newPage(d *Deps, o uiOptions) (*console.Model, error) {
	opt, err := d.selectedChain()
	if err != nil {
		return nil, err
	}
	return console.New(console.Options{
		Chains:           d.Chains,
		Connector:        d.Connector,
		Transactor:       d.Transactor,
		Log:              d.Log,
		ChainKey:         opt.Key,
		SignMode:         d.Cfg.SignMode,
		RPC:              d.Cfg.RPC,
		GasLimit:         d.Cfg.GasLimit,
		GasPrice:         d.Cfg.GasPrice,
		ConnectTimeout:   d.Cfg.ConnectTimeout,
		TxTimeout:        d.Cfg.TxTimeout,
		WaitForInclusion: !o.NoWait,
	})
}

// printSessionLog leaves the activity of the closed page on the terminal.
func printSessionLog(d *Deps, w io.Writer) {
	entries := d.Log.Entries()
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(w, d.Printer.Colors.SubHeader("Session log"))
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
}
