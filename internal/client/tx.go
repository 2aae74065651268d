package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/runner"
	"github.com/pushchain/unjail-console/internal/wallet"
)

var gasEstimateRe = regexp.MustCompile(`gas estimate:\s*(\d+)`)

func (c *binaryClient) commonArgs(address string) []string {
	args := []string{"--from", address, "--chain-id", c.opts.Chain.ChainID, "--node", c.rpc}
	return append(args, c.signer.KeyringArgs()...)
}

// Simulate estimates the gas of a transaction holding exactly one message
// with `<bin> tx ... --dry-run`.
func (c *binaryClient) Simulate(ctx context.Context, address string, msgs []amino.Msg, memo string) (uint64, error) {
	if c.isClosed() {
		return 0, errClosed
	}
	if len(msgs) != 1 {
		return 0, fmt.Errorf("simulate takes exactly one message, got %d", len(msgs))
	}
	sub, err := txArgs(msgs[0])
	if err != nil {
		return 0, err
	}
	args := append([]string{"tx"}, sub...)
	args = append(args, c.commonArgs(address)...)
	args = append(args, "--dry-run", "--gas", "auto", "--gas-adjustment", "1")
	if memo != "" {
		args = append(args, "--note", memo)
	}
	out, err := c.run(ctx, args...)
	if err != nil {
		return 0, runner.Failure(out, err)
	}
	m := gasEstimateRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no gas estimate in output: %s", runner.LastLine(string(out)))
	}
	return strconv.ParseUint(string(m[1]), 10, 64)
}

type accountInfo struct {
	Number   uint64
	Sequence uint64
}

// queryAccount reads account number and sequence. Chains wrap the account
// differently (plain, "account", "value", vesting "base_account"), so the
// fields are searched for at any depth.
func (c *binaryClient) queryAccount(ctx context.Context, address string) (accountInfo, error) {
	out, err := c.run(ctx, "query", "auth", "account", address, "--node", c.rpc, "--output", "json")
	if err != nil {
		return accountInfo{}, runner.Failure(out, err)
	}
	var v any
	if err := json.Unmarshal(runner.JSON(out), &v); err != nil {
		return accountInfo{}, fmt.Errorf("parse account %s: %w", address, err)
	}
	num, ok := findField(v, "account_number")
	if !ok {
		return accountInfo{}, fmt.Errorf("account %s has no account_number", address)
	}
	seq, _ := findField(v, "sequence")
	var info accountInfo
	if info.Number, err = parseUintField(num); err != nil {
		return accountInfo{}, fmt.Errorf("account_number: %w", err)
	}
	if seq != nil {
		if info.Sequence, err = parseUintField(seq); err != nil {
			return accountInfo{}, fmt.Errorf("sequence: %w", err)
		}
	}
	return info, nil
}

func findField(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if f, ok := t[key]; ok {
			return f, true
		}
		for _, child := range t {
			if f, ok := findField(child, key); ok {
				return f, true
			}
		}
	case []any:
		for _, child := range t {
			if f, ok := findField(child, key); ok {
				return f, true
			}
		}
	}
	return nil, false
}

func parseUintField(v any) (uint64, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.ParseUint(t, 10, 64)
	case float64:
		return uint64(t), nil
	}
	return 0, fmt.Errorf("unexpected value %v", v)
}

type broadcastResponse struct {
	Height    string `json:"height"`
	TxHash    string `json:"txhash"`
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
	RawLog    string `json:"raw_log"`
}

// SignAndBroadcast builds the unsigned transaction, signs it offline with
// the keyring and broadcasts it. In amino-json mode every message must have
// a legacy converter.
func (c *binaryClient) SignAndBroadcast(ctx context.Context, address string, msgs []amino.Msg, f fee.Fee, memo string) (Result, error) {
	if c.isClosed() {
		return Result{}, errClosed
	}
	acct, err := c.queryAccount(ctx, address)
	if err != nil {
		return Result{}, fmt.Errorf("query account: %w", err)
	}

	mode := c.signer.SignModeFor(address)
	res := Result{SignMode: mode}
	if mode == wallet.FlagSignAmino {
		doc, err := c.opts.Converters.SignDoc(c.opts.Chain.ChainID, acct.Number, acct.Sequence, f.Coins(), f.GasLimit, memo, msgs)
		if err != nil {
			return Result{}, fmt.Errorf("legacy sign doc: %w", err)
		}
		if b, err := doc.Bytes(); err == nil {
			c.opts.Logger.Debug("amino sign doc", "doc", string(b))
		}
		res.SignDoc = &doc
	}

	body, err := c.opts.Registry.UnsignedTx(msgs, memo, f.Coins(), f.GasLimit)
	if err != nil {
		return Result{}, fmt.Errorf("encode tx: %w", err)
	}
	dir, err := os.MkdirTemp("", "unjail-tx-*")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(dir)
	unsigned := filepath.Join(dir, "unsigned.json")
	signed := filepath.Join(dir, "signed.json")
	if err := os.WriteFile(unsigned, body, 0o600); err != nil {
		return Result{}, err
	}

	args := []string{"tx", "sign", unsigned}
	args = append(args, c.commonArgs(address)...)
	args = append(args,
		"--sign-mode", mode,
		"--offline",
		"--account-number", strconv.FormatUint(acct.Number, 10),
		"--sequence", strconv.FormatUint(acct.Sequence, 10),
		"--output-document", signed,
	)
	if out, err := c.run(ctx, args...); err != nil {
		return Result{}, fmt.Errorf("sign: %w", runner.Failure(out, err))
	}

	out, err := c.run(ctx, "tx", "broadcast", signed, "--node", c.rpc, "--chain-id", c.opts.Chain.ChainID, "--broadcast-mode", "sync", "--output", "json")
	if err != nil {
		return Result{}, fmt.Errorf("broadcast: %w", runner.Failure(out, err))
	}
	var br broadcastResponse
	if err := json.Unmarshal(runner.JSON(out), &br); err != nil {
		return Result{}, fmt.Errorf("parse broadcast response: %w", err)
	}
	if br.TxHash == "" {
		return Result{}, fmt.Errorf("broadcast response has no txhash: %s", runner.LastLine(string(out)))
	}
	res.Code = br.Code
	res.TxHash = br.TxHash
	res.RawLog = br.RawLog
	res.Codespace = br.Codespace
	res.Height, _ = strconv.ParseInt(br.Height, 10, 64)
	return res, nil
}
