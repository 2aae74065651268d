package console

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/session"
	"github.com/pushchain/unjail-console/internal/wallet"
)

const (
	operatorAddr = "sei1operatoraccount"
	testValoper  = "seivaloper1validatoraddressexample"
)

type fakeSigner struct{ chainID string }

func (s *fakeSigner) ChainID() string { return s.chainID }
func (s *fakeSigner) Accounts(context.Context) ([]wallet.Account, error) {
	return []wallet.Account{{Name: "operator", Address: operatorAddr}}, nil
}

type fakeProvider struct{ lastChain string }

func (p *fakeProvider) Enable(_ context.Context, chainID string) error {
	p.lastChain = chainID
	return nil
}

func (p *fakeProvider) Factories() wallet.Factories {
	f := func(_ context.Context, chainID string) (wallet.Signer, error) {
		return &fakeSigner{chainID: chainID}, nil
	}
	return wallet.Factories{AminoOnly: f, Auto: f, Generic: f}
}

type fakeClient struct {
	mu      sync.Mutex
	simGas  uint64
	result  client.Result
	waitRes node.TxResult
	lastFee fee.Fee
	calls   int
	closed  bool
}

func (c *fakeClient) Simulate(context.Context, string, []amino.Msg, string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.simGas, nil
}

func (c *fakeClient) SignAndBroadcast(_ context.Context, _ string, _ []amino.Msg, f fee.Fee, _ string) (client.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastFee = f
	return c.result, nil
}

func (c *fakeClient) WaitForTx(context.Context, string) (node.TxResult, error) { return c.waitRes, nil }
func (c *fakeClient) Status() node.Status                                     { return node.Status{Network: "pacific-1"} }

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeDialer struct {
	client  *fakeClient
	lastRPC string
}

func (d *fakeDialer) Dial(_ context.Context, rpc string, _ wallet.Signer, _ client.Options) (client.Client, error) {
	d.lastRPC = rpc
	return d.client, nil
}

type harness struct {
	model    *Model
	log      *activity.Log
	sess     *session.Session
	provider *fakeProvider
	dialer   *fakeDialer
	client   *fakeClient
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		log:      activity.New(log.New(io.Discard)),
		sess:     session.New(),
		provider: &fakeProvider{},
		client:   &fakeClient{simGas: 75000, result: client.Result{TxHash: "ABC123"}},
	}
	h.dialer = &fakeDialer{client: h.client}
	chains := chain.Builtin()
	opts := Options{
		Chains: chains,
		Connector: &session.Connector{
			Session: h.sess,
			Chains:  chains,
			Wallet:  h.provider,
			Dialer:  h.dialer,
			Log:     h.log,
		},
		Transactor: &session.Transactor{Session: h.sess, Log: h.log},
		Log:        h.log,
		ChainKey:   "pacific-1",
		SignMode:   "amino",
	}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.model = m
	return h
}

// press sends one key and settles every command it produces.
func (h *harness) press(k tea.KeyMsg) []tea.Msg {
	_, cmd := h.model.Update(k)
	return h.settle(cmd)
}

// settle runs cmd, feeds the resulting messages back into the model and
// repeats until no command is left. Spinner ticks are dropped.
func (h *harness) settle(cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	for _, msg := range drain(cmd) {
		seen = append(seen, msg)
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, next := h.model.Update(msg)
		seen = append(seen, h.settle(next)...)
	}
	return seen
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// send delivers msg without running the command it returns. Used for
// typing and focus changes, whose commands only drive cursor blinking.
func (h *harness) send(msg tea.Msg) {
	h.model.Update(msg)
}
