package session

import (
	"context"
	"strings"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
)

// Transactor runs unjail transactions for a connected Session.
type Transactor struct {
	Session *Session
	Log     *activity.Log
}

// SimulateResult carries the raw estimate and the proposed gas limit.
type SimulateResult struct {
	Estimated uint64 `json:"estimated_gas"`
	Proposed  uint64 `json:"proposed_gas_limit"`
}

// BroadcastRequest holds the operator's unjail form. Numeric fields are raw
// input and are coerced.
type BroadcastRequest struct {
	Validator string
	Memo      string
	GasLimit  string
	GasPrice  string
	FeeDenom  string
}

// BroadcastOutcome is a completed broadcast. A non-zero Result.Code is an
// on-chain rejection.
type BroadcastOutcome struct {
	Fee    fee.Fee       `json:"-"`
	Result client.Result `json:"result"`
}

func (o BroadcastOutcome) Accepted() bool { return o.Result.Code == 0 }

func (t *Transactor) validate(st State, valoper string) (string, error) {
	valoper = strings.TrimSpace(valoper)
	if valoper == "" {
		return "", exitcodes.New(exitcodes.KindInvalidValidatorAddress, "validator operator address is required")
	}
	if !chain.IsValidatorOperatorAddress(valoper, *st.Chain) {
		return "", exitcodes.Newf(exitcodes.KindInvalidValidatorAddress,
			"%s is not a %s validator operator address (expected prefix %s1)", valoper, st.Chain.ChainID, st.Chain.ValoperPrefix)
	}
	if acct, err := chain.OperatorAccount(valoper, *st.Chain); err == nil && acct != st.Address {
		t.Log.Warnf("connected account %s is not the operator account %s; the chain will refuse the unjail", st.Address, acct)
	}
	return valoper, nil
}

func (t *Transactor) fail(action string, err error) error {
	t.Log.Errorf("%s failed: %v", action, err)
	return err
}

// SimulateUnjail estimates the gas of an unjail for valoper and proposes a
// gas limit with a 20% margin.
func (t *Transactor) SimulateUnjail(ctx context.Context, valoper, memo string) (SimulateResult, error) {
	st, done, err := t.Session.beginTx(Simulating)
	if err != nil {
		return SimulateResult{}, t.fail("simulate", err)
	}
	defer done()

	valoper, err = t.validate(st, valoper)
	if err != nil {
		return SimulateResult{}, t.fail("simulate", err)
	}
	t.Log.Infof("simulating unjail of %s", valoper)
	est, err := st.Client.Simulate(ctx, st.Address, []amino.Msg{amino.NewMsgUnjail(valoper)}, memo)
	if err != nil {
		return SimulateResult{}, t.fail("simulate", exitcodes.Wrap(exitcodes.KindSimulate, "simulate unjail", err))
	}
	res := SimulateResult{Estimated: est, Proposed: fee.ProposeGasLimit(est)}
	t.Log.Infof("estimated gas %d; proposed gas limit %d", res.Estimated, res.Proposed)
	return res, nil
}

// BroadcastUnjail signs and broadcasts an unjail for req.Validator.
// An on-chain rejection is returned as an outcome, not an error.
func (t *Transactor) BroadcastUnjail(ctx context.Context, req BroadcastRequest) (BroadcastOutcome, error) {
	st, done, err := t.Session.beginTx(Broadcasting)
	if err != nil {
		return BroadcastOutcome{}, t.fail("broadcast", err)
	}
	defer done()

	valoper, err := t.validate(st, req.Validator)
	if err != nil {
		return BroadcastOutcome{}, t.fail("broadcast", err)
	}
	denom := strings.TrimSpace(req.FeeDenom)
	if denom == "" {
		denom = st.Chain.FeeDenom
	}
	if _, ok := fee.LookupGasLimit(req.GasLimit); !ok {
		t.Log.Warnf("gas limit %q is not a valid number; using %d", req.GasLimit, fee.DefaultGasLimit)
	}
	if _, ok := fee.LookupGasPrice(req.GasPrice); !ok {
		t.Log.Warnf("gas price %q is not a valid non-negative number; using %s", req.GasPrice, fee.DefaultGasPrice)
	}
	f := fee.New(req.GasLimit, req.GasPrice, denom)
	t.Log.Infof("broadcasting unjail of %s with fee %s", valoper, f)

	res, err := st.Client.SignAndBroadcast(ctx, st.Address, []amino.Msg{amino.NewMsgUnjail(valoper)}, f, req.Memo)
	if err != nil {
		return BroadcastOutcome{}, t.fail("broadcast", exitcodes.Wrap(exitcodes.KindBroadcast, "broadcast unjail", err))
	}
	out := BroadcastOutcome{Fee: f, Result: res}
	if !out.Accepted() {
		t.Log.Errorf("transaction %s rejected with code %d: %s", res.TxHash, res.Code, res.RawLog)
		return out, nil
	}
	t.Log.Infof("transaction accepted: %s", res.TxHash)
	return out, nil
}

// WaitForInclusion waits until hash is committed and reports its result.
func (t *Transactor) WaitForInclusion(ctx context.Context, hash string) (node.TxResult, error) {
	st := t.Session.Snapshot()
	if !st.Connected() {
		return node.TxResult{}, t.fail("wait", exitcodes.New(exitcodes.KindNotConnected, "not connected; connect a wallet first"))
	}
	t.Log.Infof("waiting for %s to be included", hash)
	r, err := st.Client.WaitForTx(ctx, hash)
	if err != nil {
		return node.TxResult{}, t.fail("wait", exitcodes.Wrap(exitcodes.KindBroadcast, "wait for "+hash, err))
	}
	if r.Code != 0 {
		t.Log.Errorf("transaction %s failed at height %d with code %d: %s", hash, r.Height, r.Code, r.Log)
	} else {
		t.Log.Infof("transaction %s included at height %d (gas used %d)", hash, r.Height, r.GasUsed)
	}
	return r, nil
}
