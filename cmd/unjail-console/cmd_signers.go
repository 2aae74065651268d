package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/wallet"
)

type signerRow struct {
	Mode       string `json:"mode" yaml:"mode"`
	Factory    string `json:"factory,omitempty" yaml:"factory,omitempty"`
	Accounts   bool   `json:"accounts" yaml:"accounts"`
	SignDirect bool   `json:"sign_direct" yaml:"sign_direct"`
	SignAmino  bool   `json:"sign_amino" yaml:"sign_amino"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

type signersReport struct {
	Chain    string           `json:"chain" yaml:"chain"`
	Version  string           `json:"binary_version,omitempty" yaml:"binary_version,omitempty"`
	Signers  []signerRow      `json:"signers" yaml:"signers"`
	Accounts []wallet.Account `json:"accounts" yaml:"accounts"`
	Warnings []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "signers",
		Short: "Probe which signers the keyring offers per sign mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return handleSigners(cmd.Context(), d)
		},
	})
}

func handleSigners(ctx context.Context, d *Deps) error {
	opt, err := d.selectedChain()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, d.Cfg.ConnectTimeout)
	defer cancel()
	if d.Wallet == nil {
		_, _, err := wallet.Resolve(ctx, opt.ChainID, wallet.SignModeAuto, nil)
		return err
	}
	if err := d.Wallet.Enable(ctx, opt.ChainID); err != nil {
		return err
	}

	report := signersReport{Chain: opt.ChainID}
	if w, ok := d.Wallet.(interface{ Warnings() []string }); ok {
		report.Warnings = w.Warnings()
	}
	if v, ok := d.Wallet.(interface{ Version() string }); ok {
		report.Version = v.Version()
	}
	for _, mode := range wallet.SignModes() {
		row := signerRow{Mode: string(mode)}
		s, caps, err := wallet.Resolve(ctx, opt.ChainID, mode, d.Wallet)
		if err != nil {
			row.Error = err.Error()
			report.Signers = append(report.Signers, row)
			continue
		}
		row.Factory, row.Accounts, row.SignDirect, row.SignAmino = caps.Factory, caps.Accounts, caps.SignDirect, caps.SignAmino
		report.Signers = append(report.Signers, row)
		if report.Accounts == nil {
			if l, ok := s.(wallet.AccountLister); ok {
				if accts, err := l.Accounts(ctx); err == nil {
					report.Accounts = accts
				}
			}
		}
	}

	p := d.Printer
	if p.Structured() {
		return p.Value(report)
	}
	p.Header("Signers for " + report.Chain)
	if report.Version != "" {
		p.KeyValueLine("Binary version", report.Version, "dim")
	}
	for _, w := range report.Warnings {
		p.Warn(w)
	}
	rows := make([][]string, 0, len(report.Signers))
	for _, r := range report.Signers {
		if r.Error != "" {
			rows = append(rows, []string{r.Mode, "-", "-", "-", "-", r.Error})
			continue
		}
		rows = append(rows, []string{r.Mode, r.Factory, yesNo(r.Accounts), yesNo(r.SignDirect), yesNo(r.SignAmino), ""})
	}
	p.Table([]string{"MODE", "FACTORY", "ACCOUNTS", "DIRECT", "AMINO", "ERROR"}, rows)
	p.Section("Accounts")
	if len(report.Accounts) == 0 {
		p.Info("no accounts")
	}
	for _, a := range report.Accounts {
		p.KeyValueLine(a.Name, strings.TrimSpace(a.Address+" "+typeTag(a.Type)), "address")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func typeTag(t string) string {
	if t == "" {
		return ""
	}
	return "(" + t + ")"
}
