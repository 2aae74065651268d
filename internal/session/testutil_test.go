package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/wallet"
)

const operatorAddr = "sei1operatoraccount"

type fakeSigner struct {
	chainID  string
	accounts []wallet.Account
	listErr  error
}

func (s *fakeSigner) ChainID() string { return s.chainID }
func (s *fakeSigner) Accounts(context.Context) ([]wallet.Account, error) {
	return s.accounts, s.listErr
}
func (s *fakeSigner) SupportsAmino() bool { return true }

// nonListingSigner cannot enumerate accounts.
type nonListingSigner struct{}

func (nonListingSigner) ChainID() string { return "pacific-1" }

type fakeProvider struct {
	enableErr error
	factories *wallet.Factories
	signer    wallet.Signer
	warnings  []string
	// block, when set, holds Enable until closed; started is signalled first.
	block   chan struct{}
	started chan struct{}
	enabled []string
}

func (p *fakeProvider) Enable(ctx context.Context, chainID string) error {
	p.enabled = append(p.enabled, chainID)
	if p.block != nil {
		p.started <- struct{}{}
		<-p.block
	}
	return p.enableErr
}

func (p *fakeProvider) Factories() wallet.Factories {
	if p.factories != nil {
		return *p.factories
	}
	return wallet.Factories{
		AminoOnly: func(_ context.Context, chainID string) (wallet.Signer, error) { return p.signerFor(chainID), nil },
		Generic:   func(_ context.Context, chainID string) (wallet.Signer, error) { return p.signerFor(chainID), nil },
	}
}

func (p *fakeProvider) Warnings() []string { return p.warnings }

func (p *fakeProvider) signerFor(chainID string) wallet.Signer {
	if p.signer != nil {
		return p.signer
	}
	return &fakeSigner{chainID: chainID, accounts: []wallet.Account{{Name: "operator", Address: operatorAddr}}}
}

type fakeClient struct {
	mu       sync.Mutex
	simGas   uint64
	simErr   error
	result   client.Result
	bcErr    error
	waitRes  node.TxResult
	waitErr  error
	simCalls int
	bcCalls  int
	closed   bool
	lastMsgs []amino.Msg
	lastFee  fee.Fee
	lastMemo string
	// block, when set, holds Simulate until closed; started is signalled first.
	block   chan struct{}
	started chan struct{}
}

func (c *fakeClient) Simulate(_ context.Context, _ string, msgs []amino.Msg, memo string) (uint64, error) {
	c.mu.Lock()
	c.simCalls++
	c.lastMsgs = msgs
	c.lastMemo = memo
	c.mu.Unlock()
	if c.block != nil {
		c.started <- struct{}{}
		<-c.block
	}
	return c.simGas, c.simErr
}

func (c *fakeClient) SignAndBroadcast(_ context.Context, _ string, msgs []amino.Msg, f fee.Fee, memo string) (client.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bcCalls++
	c.lastMsgs = msgs
	c.lastFee = f
	c.lastMemo = memo
	return c.result, c.bcErr
}

func (c *fakeClient) WaitForTx(context.Context, string) (node.TxResult, error) {
	return c.waitRes, c.waitErr
}

func (c *fakeClient) Status() node.Status { return node.Status{Network: "pacific-1"} }

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeDialer struct {
	client   *fakeClient
	err      error
	calls    int
	lastRPC  string
	lastOpts client.Options
}

func (d *fakeDialer) Dial(_ context.Context, rpc string, _ wallet.Signer, opts client.Options) (client.Client, error) {
	d.calls++
	d.lastRPC = rpc
	d.lastOpts = opts
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

type harness struct {
	sess     *Session
	conn     *Connector
	tx       *Transactor
	log      *activity.Log
	provider *fakeProvider
	dialer   *fakeDialer
	client   *fakeClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sess:     New(),
		log:      activity.New(log.New(io.Discard)),
		provider: &fakeProvider{},
		client:   &fakeClient{result: client.Result{TxHash: "ABC123"}},
	}
	h.dialer = &fakeDialer{client: h.client}
	h.conn = &Connector{
		Session: h.sess,
		Chains:  chain.Builtin(),
		Wallet:  h.provider,
		Dialer:  h.dialer,
		Log:     h.log,
	}
	h.tx = &Transactor{Session: h.sess, Log: h.log}
	return h
}

func (h *harness) connect(t *testing.T) State {
	t.Helper()
	st, err := h.conn.Connect(context.Background(), ConnectRequest{
		ChainKey: "pacific-1",
		Mode:     "amino",
		RPC:      "https://sei-rpc.polkachu.com:443",
	})
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	return st
}

// logIndex returns the index of the first entry containing s, or -1.
func (h *harness) logIndex(s string) int {
	for i, e := range h.log.Entries() {
		if strings.Contains(e.Message, s) {
			return i
		}
	}
	return -1
}
