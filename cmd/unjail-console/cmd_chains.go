package main

import (
	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/chain"
)

type chainsReport struct {
	Selected string         `json:"selected" yaml:"selected"`
	Chains   []chain.Option `json:"chains" yaml:"chains"`
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return handleChains(d)
		},
	})
}

func handleChains(d *Deps) error {
	p := d.Printer
	report := chainsReport{Selected: d.Cfg.Chain, Chains: d.Chains.All()}
	if p.Structured() {
		return p.Value(report)
	}
	rows := make([][]string, 0, len(report.Chains))
	for _, c := range report.Chains {
		mark := ""
		if c.Key == report.Selected {
			mark = "*"
		}
		rows = append(rows, []string{mark, c.Key, c.ValoperPrefix, c.FeeDenom, c.DefaultGasPrice, c.Binary, c.DefaultRPC})
	}
	p.Table([]string{"", "KEY", "VALOPER", "DENOM", "GAS PRICE", "BINARY", "RPC"}, rows)
	return nil
}
