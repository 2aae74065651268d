package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleVersion(getPrinter())
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unknown shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func handleVersion(p ui.Printer) error {
	if p.Structured() {
		return p.Value(map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_date": BuildDate,
		})
	}
	p.Textf("unjail-console %s (%s) built %s\n", Version, Commit, BuildDate)
	return nil
}
