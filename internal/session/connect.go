package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// Connector drives the connection state machine of a Session.
type Connector struct {
	Session *Session
	Chains  *chain.Registry
	Wallet  wallet.Provider
	Dialer  client.Dialer
	// ClientOptions is the template passed to Dial; chain and message
	// tables are filled in per connection.
	ClientOptions client.Options
	Log           *activity.Log
}

// ConnectRequest holds the operator's connect form.
type ConnectRequest struct {
	ChainKey string
	Mode     string
	RPC      string
}

// warner is implemented by providers that collect non-fatal findings.
type warner interface {
	Warnings() []string
}

// Connect runs the connect sequence. On success the session holds the full
// state; on any failure it is left empty.
func (c *Connector) Connect(ctx context.Context, req ConnectRequest) (State, error) {
	gen, old, err := c.Session.beginConnect()
	if err != nil {
		c.Log.Errorf("connect refused: %v", err)
		return State{}, err
	}
	if old != nil {
		_ = old.Close()
		c.Log.Infof("closed previous connection")
	}

	st, err := c.connect(ctx, req)
	if err != nil {
		if st.Client != nil {
			_ = st.Client.Close()
		}
		c.Session.failConnect(gen)
		c.Log.Errorf("connect failed: %v", err)
		return State{}, err
	}
	if !c.Session.commitConnect(gen, st) {
		_ = st.Client.Close()
		err := exitcodes.New(exitcodes.KindClientConnect, "connection was cancelled by a disconnect")
		c.Log.Warnf("%v", err)
		return State{}, err
	}
	c.Log.Infof("connected to %s as %s (%s signer, sign mode %s)", st.Chain.ChainID, st.Address, st.Capabilities.Factory, st.SignMode)
	return st, nil
}

func (c *Connector) connect(ctx context.Context, req ConnectRequest) (State, error) {
	rpc := strings.TrimSpace(req.RPC)
	if rpc == "" {
		return State{}, exitcodes.New(exitcodes.KindInvalidInput, "rpc endpoint is required")
	}
	opt, err := c.Chains.Lookup(req.ChainKey)
	if err != nil {
		return State{}, err
	}
	mode, err := wallet.ParseSignMode(req.Mode)
	if err != nil {
		return State{}, err
	}
	if c.Wallet == nil {
		return State{}, exitcodes.New(exitcodes.KindWalletUnavailable, "no wallet available")
	}

	c.Log.Infof("requesting wallet authorization for %s", opt.ChainID)
	if err := c.Wallet.Enable(ctx, opt.ChainID); err != nil {
		return State{}, exitcodes.Wrap(exitcodes.KindWalletUnavailable, "wallet authorization", err)
	}
	if w, ok := c.Wallet.(warner); ok {
		for _, msg := range w.Warnings() {
			c.Log.Warnf("%s", msg)
		}
	}

	signer, caps, err := wallet.Resolve(ctx, opt.ChainID, mode, c.Wallet)
	if err != nil {
		return State{}, err
	}
	c.Log.Infof("signer: %s factory, accounts=%s direct=%s amino=%s",
		caps.Factory, yesNo(caps.Accounts), yesNo(caps.SignDirect), yesNo(caps.SignAmino))
	if mode == wallet.SignModeAmino && !caps.SignAmino {
		c.Log.Warnf("wallet offers no amino-only signer; falling back to the generic signer")
	}

	acct, err := wallet.FirstAccount(ctx, signer)
	if err != nil {
		return State{}, err
	}

	registry := amino.DefaultRegistry().WithUnjail()
	converters := amino.DefaultConverters().WithUnjail()

	opts := c.ClientOptions
	opts.Chain = opt
	opts.Registry = registry
	opts.Converters = converters
	cl, err := c.Dialer.Dial(ctx, rpc, signer, opts)
	if err != nil {
		if exitcodes.KindOf(err) == exitcodes.KindNone {
			err = exitcodes.Wrap(exitcodes.KindClientConnect, "connect "+rpc, err)
		}
		return State{}, err
	}

	return State{
		Chain:        &opt,
		RPCEndpoint:  rpc,
		SignMode:     mode,
		Signer:       signer,
		Capabilities: caps,
		Address:      acct.Address,
		Client:       cl,
		Registry:     registry,
		Converters:   converters,
	}, nil
}

// Disconnect empties the session. It always succeeds.
func (c *Connector) Disconnect() {
	prev, phase := c.Session.reset()
	if prev.Client != nil {
		_ = prev.Client.Close()
	}
	switch {
	case prev.Chain != nil:
		c.Log.Infof("disconnected from %s", prev.Chain.ChainID)
	case phase == Connecting:
		c.Log.Infof("connection attempt abandoned")
	default:
		c.Log.Infof("disconnected")
	}
}

// SwitchChain selects another chain. A live or pending connection is
// dropped first.
func (c *Connector) SwitchChain(key string) (chain.Option, error) {
	opt, err := c.Chains.Lookup(key)
	if err != nil {
		c.Log.Errorf("%v", err)
		return chain.Option{}, err
	}
	st := c.Session.Snapshot()
	if c.Session.Phase() != Idle {
		from := "pending connection"
		if st.Chain != nil {
			from = st.Chain.ChainID
		}
		c.Disconnect()
		c.Log.Infof("chain switched to %s; disconnected from %s", opt.ChainID, from)
		return opt, nil
	}
	c.Log.Infof("chain set to %s", opt.ChainID)
	return opt, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// String renders a short status for the page and CLI.
func (s State) String() string {
	if !s.Connected() {
		return "not connected"
	}
	return fmt.Sprintf("%s via %s as %s", s.Chain.ChainID, s.RPCEndpoint, s.Address)
}
