package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/ui"
)

type simulateReport struct {
	Chain            string `json:"chain" yaml:"chain"`
	Validator        string `json:"validator" yaml:"validator"`
	Signer           string `json:"signer" yaml:"signer"`
	EstimatedGas     uint64 `json:"estimated_gas" yaml:"estimated_gas"`
	ProposedGasLimit uint64 `json:"proposed_gas_limit" yaml:"proposed_gas_limit"`
	Fee              string `json:"fee" yaml:"fee"`
}

func init() {
	var validator, memo string
	cmd := &cobra.Command{
		Use:   "simulate [valoper]",
		Short: "Estimate the gas of an unjail transaction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := validatorArg(validator, args)
			if err != nil {
				return err
			}
			d, err := newDeps(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return handleSimulate(cmd.Context(), d, v, memo)
		},
	}
	cmd.Flags().StringVar(&validator, "validator", "", "Validator operator address (valoper)")
	cmd.Flags().StringVar(&memo, "memo", "", "Transaction memo")
	rootCmd.AddCommand(cmd)
}

func handleSimulate(ctx context.Context, d *Deps, valoper, memo string) error {
	st, err := connectSession(ctx, d)
	if err != nil {
		return err
	}
	defer d.Connector.Disconnect()

	ctx, cancel := withTimeout(ctx, d.Cfg.TxTimeout)
	defer cancel()
	res, err := d.Transactor.SimulateUnjail(ctx, valoper, memo)
	if err != nil {
		return err
	}
	f := fee.New(strconv.FormatUint(res.Proposed, 10), d.Cfg.Price(*st.Chain), st.Chain.FeeDenom)
	report := simulateReport{
		Chain:            st.Chain.ChainID,
		Validator:        valoper,
		Signer:           st.Address,
		EstimatedGas:     res.Estimated,
		ProposedGasLimit: res.Proposed,
		Fee:              f.Amount().String() + f.Denom,
	}

	p := d.Printer
	if p.Structured() {
		return p.Value(report)
	}
	p.Success("Simulation succeeded")
	p.KeyValueLine("Validator", report.Validator, "address")
	p.KeyValueLine("Estimated gas", ui.FormatNumber(report.EstimatedGas), "")
	p.KeyValueLine("Gas limit", ui.FormatNumber(report.ProposedGasLimit), "green")
	p.KeyValueLine("Fee", report.Fee, "")
	return nil
}
