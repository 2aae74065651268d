package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/session"
)

type unjailOptions struct {
	Validator string
	Memo      string
	GasLimit  string
	GasPrice  string
	FeeDenom  string
	Simulate  bool
	Wait      bool
}

type unjailReport struct {
	Chain     string         `json:"chain" yaml:"chain"`
	Validator string         `json:"validator" yaml:"validator"`
	Signer    string         `json:"signer" yaml:"signer"`
	Fee       string         `json:"fee" yaml:"fee"`
	GasLimit  uint64         `json:"gas_limit" yaml:"gas_limit"`
	SignMode  string         `json:"sign_mode" yaml:"sign_mode"`
	TxHash    string         `json:"txhash" yaml:"txhash"`
	Code      uint32         `json:"code" yaml:"code"`
	Codespace string         `json:"codespace,omitempty" yaml:"codespace,omitempty"`
	RawLog    string         `json:"raw_log,omitempty" yaml:"raw_log,omitempty"`
	Included  *node.TxResult `json:"included,omitempty" yaml:"included,omitempty"`
}

func init() {
	var o unjailOptions
	cmd := &cobra.Command{
		Use:   "unjail [valoper]",
		Short: "Sign and broadcast MsgUnjail for a jailed validator",
		Long:  "Unjail a validator that was jailed for downtime. The connected keyring account must be the validator operator.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := validatorArg(o.Validator, args)
			if err != nil {
				return err
			}
			o.Validator = v
			d, err := newDeps(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return handleUnjail(cmd.Context(), d, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.Validator, "validator", "", "Validator operator address (valoper)")
	f.StringVar(&o.Memo, "memo", "", "Transaction memo")
	f.StringVar(&o.GasLimit, "gas-limit", "", "Gas limit (default from config, 100000)")
	f.StringVar(&o.GasPrice, "gas-price", "", "Gas price in the fee denom (default: chain's)")
	f.StringVar(&o.FeeDenom, "fee-denom", "", "Fee denom (default: chain's)")
	f.BoolVar(&o.Simulate, "simulate", false, "Simulate first and use the proposed gas limit")
	f.BoolVar(&o.Wait, "wait", false, "Wait until the transaction is included in a block")
	rootCmd.AddCommand(cmd)
}

func handleUnjail(ctx context.Context, d *Deps, o unjailOptions) error {
	st, err := connectSession(ctx, d)
	if err != nil {
		return err
	}
	defer d.Connector.Disconnect()

	ctx, cancel := withTimeout(ctx, d.Cfg.TxTimeout)
	defer cancel()

	gasLimit := firstNonEmpty(o.GasLimit, d.Cfg.GasLimit)
	if o.Simulate {
		res, err := d.Transactor.SimulateUnjail(ctx, o.Validator, o.Memo)
		if err != nil {
			return err
		}
		gasLimit = strconv.FormatUint(res.Proposed, 10)
	}
	out, err := d.Transactor.BroadcastUnjail(ctx, session.BroadcastRequest{
		Validator: o.Validator,
		Memo:      o.Memo,
		GasLimit:  gasLimit,
		GasPrice:  firstNonEmpty(o.GasPrice, d.Cfg.Price(*st.Chain)),
		FeeDenom:  o.FeeDenom,
	})
	if err != nil {
		return err
	}
	if doc := out.Result.SignDoc; doc != nil {
		if b, err := doc.Bytes(); err == nil {
			d.Logger.Debug("amino sign doc", "doc", string(b))
		}
	}

	report := unjailReport{
		Chain:     st.Chain.ChainID,
		Validator: o.Validator,
		Signer:    st.Address,
		Fee:       out.Fee.Amount().String() + out.Fee.Denom,
		GasLimit:  out.Fee.GasLimit,
		SignMode:  out.Result.SignMode,
		TxHash:    out.Result.TxHash,
		Code:      out.Result.Code,
		Codespace: out.Result.Codespace,
		RawLog:    out.Result.RawLog,
	}
	if out.Accepted() && o.Wait {
		r, err := d.Transactor.WaitForInclusion(ctx, out.Result.TxHash)
		if err != nil {
			printUnjail(d, report)
			return err
		}
		report.Included = &r
		if r.Code != 0 {
			report.Code, report.Codespace, report.RawLog = r.Code, r.Codespace, r.Log
		}
	}

	printUnjail(d, report)
	if report.Code != 0 {
		return silentErr{exitcodes.NewErrorf(exitcodes.Rejected, "transaction %s rejected with code %d", report.TxHash, report.Code)}
	}
	return nil
}

func printUnjail(d *Deps, r unjailReport) {
	p := d.Printer
	if p.Structured() {
		_ = p.Value(r)
		return
	}
	if r.Code != 0 {
		p.Error("Unjail rejected by the chain")
	} else {
		p.Success("Unjail transaction accepted")
	}
	p.KeyValueLine("Validator", r.Validator, "address")
	p.KeyValueLine("Tx hash", r.TxHash, "")
	p.KeyValueLine("Fee", r.Fee, "")
	p.KeyValueLine("Sign mode", r.SignMode, "dim")
	if r.Included != nil {
		p.KeyValueLine("Height", strconv.FormatInt(r.Included.Height, 10), "green")
	}
	if r.Code != 0 {
		p.KeyValueLine("Code", strconv.FormatUint(uint64(r.Code), 10), "yellow")
		p.KeyValueLine("Log", r.RawLog, "dim")
	}
}
