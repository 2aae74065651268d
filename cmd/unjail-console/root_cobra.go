package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/config"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootCmd opens the interactive page when run without a subcommand.
// Persistent flags are applied to the loaded config in loadCfg().
var rootCmd = &cobra.Command{
	Use:           "unjail-console",
	Short:         "Unjail a Cosmos validator",
	Long:          "Connect a keyring wallet, simulate and broadcast MsgUnjail for a jailed validator.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}
		if !ui.ValidFormat(flagOutput) {
			return exitcodes.InvalidArgsErrorf("invalid --output: %s (use json|yaml|text)", flagOutput)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUI(cmd, uiOptions{})
	},
}

var (
	flagChain          string
	flagSignMode       string
	flagRPC            string
	flagHome           string
	flagKeyringBackend string
	flagBin            string
	flagConfig         string
	flagOutput         string
	flagNoColor        bool
	flagDebug          bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagChain, "chain", "", "Chain key (see 'chains')")
	pf.StringVar(&flagSignMode, "sign-mode", "", "Signing mode: amino|direct|auto")
	pf.StringVar(&flagRPC, "rpc", "", "Tendermint RPC endpoint (defaults to the chain's)")
	pf.StringVar(&flagHome, "home", "", "Chain binary home directory holding the keyring")
	pf.StringVar(&flagKeyringBackend, "keyring-backend", "", "Keyring backend: os|file|test")
	pf.StringVar(&flagBin, "bin", "", "Path to the chain binary (defaults to the chain's)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.DefaultPath()+")")
	pf.StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	pf.BoolVarP(&flagDebug, "debug", "d", false, "Debug output: extra diagnostic logs")
}

// silentErr carries an exit code for a failure that was already reported.
type silentErr struct{ error }

func (e silentErr) Unwrap() error { return e.error }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			if flagOutput == ui.FormatText {
				getErrPrinter().PrintError(ui.FromError(err))
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		os.Exit(exitcodes.CodeForError(err))
	}
}

// loadCfg reads defaults, the config file and env via internal/config.Load()
// and then applies overrides from persistent flags.
func loadCfg() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, exitcodes.Wrap(exitcodes.KindInvalidInput, "load config", err)
	}
	if flagChain != "" {
		cfg.Chain = flagChain
	}
	if flagSignMode != "" {
		cfg.SignMode = flagSignMode
	}
	if flagRPC != "" {
		cfg.RPC = flagRPC
	}
	if flagHome != "" {
		cfg.HomeDir = flagHome
	}
	if flagKeyringBackend != "" {
		cfg.KeyringBackend = flagKeyringBackend
	}
	if flagBin != "" {
		cfg.BinPath = flagBin
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = time.Minute
	}
	return cfg, nil
}

func colors() *ui.ColorConfig {
	c := ui.NewColorConfig()
	c.Enabled = c.Enabled && !flagNoColor
	return c
}

func getPrinter() ui.Printer {
	return ui.NewPrinterTo(os.Stdout, flagOutput, colors())
}

func getErrPrinter() ui.Printer {
	return ui.NewPrinterTo(os.Stderr, flagOutput, colors())
}
