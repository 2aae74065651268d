// Package client talks to a chain: the tendermint RPC for the handshake and
// inclusion tracking, the chain binary for simulate, sign and broadcast.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/runner"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// Result is the broadcast response. A non-zero Code is an on-chain
// rejection, not a transport failure.
type Result struct {
	Code      uint32            `json:"code"`
	TxHash    string            `json:"txhash"`
	RawLog    string            `json:"raw_log,omitempty"`
	Codespace string            `json:"codespace,omitempty"`
	Height    int64             `json:"height,omitempty"`
	SignMode  string            `json:"sign_mode"`
	SignDoc   *amino.StdSignDoc `json:"sign_doc,omitempty"`
}

// Client is a connected chain client.
type Client interface {
	Simulate(ctx context.Context, address string, msgs []amino.Msg, memo string) (uint64, error)
	SignAndBroadcast(ctx context.Context, address string, msgs []amino.Msg, f fee.Fee, memo string) (Result, error)
	WaitForTx(ctx context.Context, hash string) (node.TxResult, error)
	Status() node.Status
	Close() error
}

// Options binds a client to a chain and its message tables.
type Options struct {
	Chain      chain.Option
	Registry   *amino.Registry
	Converters *amino.Converters
	Runner     runner.Runner
	NewNode    func(rpc string) node.Client
	Logger     *log.Logger
}

// Dialer opens connected clients.
type Dialer interface {
	Dial(ctx context.Context, rpc string, signer wallet.Signer, opts Options) (Client, error)
}

// BinaryDialer dials clients that sign and broadcast through the chain binary
// of a keyring signer.
type BinaryDialer struct {
	PollInterval time.Duration
}

var errClosed = errors.New("client is closed")

// Dial performs the /status handshake and checks the endpoint serves the
// selected chain.
func (d BinaryDialer) Dial(ctx context.Context, rpc string, signer wallet.Signer, opts Options) (Client, error) {
	ks, ok := signer.(wallet.KeyringSigner)
	if !ok {
		return nil, exitcodes.Newf(exitcodes.KindUnsupportedSigner, "signer %T cannot sign through the chain binary", signer)
	}
	if opts.Registry == nil || opts.Converters == nil {
		return nil, exitcodes.New(exitcodes.KindClientConnect, "client needs a message registry and converter table")
	}
	if opts.Runner == nil {
		opts.Runner = runner.Exec{}
	}
	if opts.NewNode == nil {
		opts.NewNode = node.New
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	rpc = node.NormalizeEndpoint(rpc)
	if rpc == "" {
		return nil, exitcodes.New(exitcodes.KindInvalidInput, "rpc endpoint is required")
	}

	nc := opts.NewNode(rpc)
	st, err := nc.Status(ctx)
	if err != nil {
		return nil, exitcodes.Wrap(exitcodes.KindClientConnect, "connect "+rpc, err)
	}
	if st.Network != opts.Chain.ChainID {
		return nil, exitcodes.Newf(exitcodes.KindClientConnect, "%s serves chain %q, expected %q", rpc, st.Network, opts.Chain.ChainID)
	}
	if st.CatchingUp {
		opts.Logger.Warn("rpc node is still catching up", "rpc", rpc, "height", st.Height)
	}
	poll := d.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &binaryClient{
		rpc:    rpc,
		signer: ks,
		opts:   opts,
		node:   nc,
		status: st,
		poll:   poll,
	}, nil
}

type binaryClient struct {
	rpc    string
	signer wallet.KeyringSigner
	opts   Options
	node   node.Client
	status node.Status
	poll   time.Duration

	mu     sync.Mutex
	closed bool
}

func (c *binaryClient) Status() node.Status { return c.status }

func (c *binaryClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *binaryClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *binaryClient) run(ctx context.Context, args ...string) ([]byte, error) {
	c.opts.Logger.Debug("exec", "bin", c.signer.BinPath(), "args", args)
	return c.opts.Runner.Run(ctx, c.signer.BinPath(), args...)
}

// txArgs maps a message onto the chain binary's tx subcommand.
func txArgs(m amino.Msg) ([]string, error) {
	switch msg := m.(type) {
	case amino.MsgUnjail:
		return []string{"slashing", "unjail"}, nil
	case amino.MsgWithdrawDelegatorReward:
		return []string{"distribution", "withdraw-rewards", msg.ValidatorAddress}, nil
	}
	return nil, fmt.Errorf("simulation of %s is not supported", m.TypeURL())
}

// WaitForTx waits for hash to be committed. It subscribes over websocket and
// falls back to polling /tx when the subscription cannot be opened.
func (c *binaryClient) WaitForTx(ctx context.Context, hash string) (node.TxResult, error) {
	if c.isClosed() {
		return node.TxResult{}, errClosed
	}
	ch, err := c.node.SubscribeTx(ctx, hash)
	if err != nil {
		c.opts.Logger.Debug("tx subscription failed, polling", "err", err)
		return c.pollTx(ctx, hash)
	}
	// the tx may have landed before the subscription started
	if r, err := c.node.Tx(ctx, hash); err == nil {
		return r, nil
	}
	select {
	case r, ok := <-ch:
		if ok {
			return r, nil
		}
		if ctx.Err() != nil {
			return node.TxResult{}, ctx.Err()
		}
		return c.pollTx(ctx, hash)
	case <-ctx.Done():
		return node.TxResult{}, ctx.Err()
	}
}

func (c *binaryClient) pollTx(ctx context.Context, hash string) (node.TxResult, error) {
	t := time.NewTicker(c.poll)
	defer t.Stop()
	for {
		r, err := c.node.Tx(ctx, hash)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, node.ErrTxNotFound) {
			c.opts.Logger.Debug("tx lookup failed", "hash", hash, "err", err)
		}
		select {
		case <-ctx.Done():
			return node.TxResult{}, ctx.Err()
		case <-t.C:
		}
	}
}
