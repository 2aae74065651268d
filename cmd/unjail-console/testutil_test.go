package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/config"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/ui"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

const (
	operatorAddr = "sei1operatoraccount"
	testValoper  = "seivaloper1validatoraddressexample"
)

type mockSigner struct{ chainID string }

func (s *mockSigner) ChainID() string { return s.chainID }
func (s *mockSigner) Accounts(context.Context) ([]wallet.Account, error) {
	return []wallet.Account{{Name: "operator", Address: operatorAddr, Type: "local"}}, nil
}
func (s *mockSigner) SupportsDirect() bool { return true }

// mockProvider implements wallet.Provider for testing. Without an amino-only
// factory, amino mode resolves to the generic signer.
type mockProvider struct {
	enableErr error
	warnings  []string
	version   string
}

func (p *mockProvider) Enable(context.Context, string) error { return p.enableErr }

func (p *mockProvider) Factories() wallet.Factories {
	f := func(_ context.Context, chainID string) (wallet.Signer, error) {
		return &mockSigner{chainID: chainID}, nil
	}
	return wallet.Factories{Auto: f, Generic: f}
}

func (p *mockProvider) Warnings() []string { return p.warnings }
func (p *mockProvider) Version() string    { return p.version }

// mockClient implements client.Client for testing.
type mockClient struct {
	mu      sync.Mutex
	simGas  uint64
	simErr  error
	result  client.Result
	bcErr   error
	waitRes node.TxResult
	waitErr error
	lastFee fee.Fee
	closed  bool
}

func (c *mockClient) Simulate(context.Context, string, []amino.Msg, string) (uint64, error) {
	return c.simGas, c.simErr
}

func (c *mockClient) SignAndBroadcast(_ context.Context, _ string, _ []amino.Msg, f fee.Fee, _ string) (client.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFee = f
	return c.result, c.bcErr
}

func (c *mockClient) WaitForTx(context.Context, string) (node.TxResult, error) {
	return c.waitRes, c.waitErr
}

func (c *mockClient) Status() node.Status { return node.Status{Network: "pacific-1"} }

func (c *mockClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type mockDialer struct {
	client  *mockClient
	err     error
	lastRPC string
}

func (d *mockDialer) Dial(_ context.Context, rpc string, _ wallet.Signer, _ client.Options) (client.Client, error) {
	d.lastRPC = rpc
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

type testEnv struct {
	deps     *Deps
	out      *bytes.Buffer
	provider *mockProvider
	dialer   *mockDialer
	client   *mockClient
}

// newTestEnv wires Deps around mocks; output goes to a buffer in format.
func newTestEnv(t *testing.T, format string) *testEnv {
	t.Helper()
	e := &testEnv{
		out:      &bytes.Buffer{},
		provider: &mockProvider{},
		client: &mockClient{
			simGas: 75000,
			result: client.Result{TxHash: "ABC123", SignMode: wallet.FlagSignDirect},
		},
	}
	e.dialer = &mockDialer{client: e.client}
	cfg := config.Defaults()
	e.deps = assemble(cfg, chain.Builtin(), e.provider, e.dialer,
		log.New(io.Discard), ui.NewPrinterTo(e.out, format, nil))
	return e
}
