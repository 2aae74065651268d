package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/wallet"
)

type fakeSigner struct {
	mode string
}

func (s *fakeSigner) ChainID() string { return "pacific-1" }
func (s *fakeSigner) Accounts(context.Context) ([]wallet.Account, error) {
	return []wallet.Account{{Address: "sei1operator"}}, nil
}
func (s *fakeSigner) BinPath() string           { return "seid" }
func (s *fakeSigner) KeyringArgs() []string     { return []string{"--keyring-backend", "test"} }
func (s *fakeSigner) SignModeFor(string) string { return s.mode }

type plainSigner struct{}

func (plainSigner) ChainID() string { return "pacific-1" }

type fakeNode struct {
	status    node.Status
	statusErr error
	txResults []error // errors returned by successive Tx calls before success
	tx        node.TxResult
	subErr    error
	sub       chan node.TxResult
	txCalls   int
}

func (n *fakeNode) Status(context.Context) (node.Status, error) { return n.status, n.statusErr }

func (n *fakeNode) Tx(context.Context, string) (node.TxResult, error) {
	n.txCalls++
	if len(n.txResults) > 0 {
		err := n.txResults[0]
		n.txResults = n.txResults[1:]
		return node.TxResult{}, err
	}
	return n.tx, nil
}

func (n *fakeNode) SubscribeTx(context.Context, string) (<-chan node.TxResult, error) {
	if n.subErr != nil {
		return nil, n.subErr
	}
	return n.sub, nil
}

type call struct {
	name string
	args []string
}

// mockRunner answers by the leading subcommand words, e.g. "tx sign".
type mockRunner struct {
	responses map[string]string
	errs      map[string]error
	calls     []call
	onCall    func(args []string)
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, call{name: name, args: args})
	if m.onCall != nil {
		m.onCall(args)
	}
	key := strings.Join(args[:2], " ")
	return []byte(m.responses[key]), m.errs[key]
}

func (m *mockRunner) find(prefix string) []string {
	for _, c := range m.calls {
		if strings.HasPrefix(strings.Join(c.args, " "), prefix) {
			return c.args
		}
	}
	return nil
}

func sei() chain.Option {
	c, _ := chain.Builtin().Lookup("pacific-1")
	return c
}

func dial(t *testing.T, s wallet.Signer, n *fakeNode, r *mockRunner) Client {
	t.Helper()
	c, err := BinaryDialer{PollInterval: time.Millisecond}.Dial(context.Background(), "https://sei-rpc.polkachu.com:443", s, Options{
		Chain:      sei(),
		Registry:   amino.DefaultRegistry().WithUnjail(),
		Converters: amino.DefaultConverters().WithUnjail(),
		Runner:     r,
		NewNode:    func(string) node.Client { return n },
		Logger:     log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	return c
}

func TestDial(t *testing.T) {
	opts := func(n *fakeNode) Options {
		return Options{
			Chain:      sei(),
			Registry:   amino.DefaultRegistry().WithUnjail(),
			Converters: amino.DefaultConverters().WithUnjail(),
			NewNode:    func(string) node.Client { return n },
			Logger:     log.New(io.Discard),
		}
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		signer wallet.Signer
		node   *fakeNode
		rpc    string
		kind   exitcodes.Kind
	}{
		{"ok", &fakeSigner{}, &fakeNode{status: node.Status{Network: "pacific-1"}}, "https://sei-rpc.polkachu.com:443", ""},
		{"transport error", &fakeSigner{}, &fakeNode{statusErr: errors.New("dial tcp: refused")}, "https://x:443", exitcodes.KindClientConnect},
		{"wrong chain", &fakeSigner{}, &fakeNode{status: node.Status{Network: "atlantic-2"}}, "https://x:443", exitcodes.KindClientConnect},
		{"plain signer", plainSigner{}, &fakeNode{status: node.Status{Network: "pacific-1"}}, "https://x:443", exitcodes.KindUnsupportedSigner},
		{"empty rpc", &fakeSigner{}, &fakeNode{status: node.Status{Network: "pacific-1"}}, " ", exitcodes.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := BinaryDialer{}.Dial(ctx, tt.rpc, tt.signer, opts(tt.node))
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Dial error: %v", err)
				}
				if c.Status().Network != "pacific-1" {
					t.Errorf("Status = %+v", c.Status())
				}
				return
			}
			if !exitcodes.Is(err, tt.kind) {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
		})
	}

	_, err := BinaryDialer{}.Dial(ctx, "https://x:443", &fakeSigner{}, Options{Chain: sei()})
	if !exitcodes.Is(err, exitcodes.KindClientConnect) {
		t.Errorf("missing tables: err = %v", err)
	}
}

func TestSimulate(t *testing.T) {
	r := &mockRunner{responses: map[string]string{
		"tx slashing": "gas estimate: 75000\n",
	}}
	c := dial(t, &fakeSigner{mode: wallet.FlagSignDirect}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)

	gas, err := c.Simulate(context.Background(), "sei1operator", []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}, "hi")
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if gas != 75000 {
		t.Errorf("gas = %d, want 75000", gas)
	}
	got := strings.Join(r.calls[0].args, " ")
	want := "tx slashing unjail --from sei1operator --chain-id pacific-1 --node https://sei-rpc.polkachu.com:443 --keyring-backend test --dry-run --gas auto --gas-adjustment 1 --note hi"
	if got != want {
		t.Errorf("args:\n got %s\nwant %s", got, want)
	}
	if r.calls[0].name != "seid" {
		t.Errorf("binary = %q", r.calls[0].name)
	}
}

func TestSimulate_Errors(t *testing.T) {
	ctx := context.Background()
	unjail := []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}

	r := &mockRunner{
		responses: map[string]string{"tx slashing": "Error: rpc error: code = Unknown desc = validator not jailed\n"},
		errs:      map[string]error{"tx slashing": errors.New("exit status 1")},
	}
	c := dial(t, &fakeSigner{}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)
	if _, err := c.Simulate(ctx, "sei1operator", unjail, ""); err == nil || !strings.Contains(err.Error(), "validator not jailed") {
		t.Errorf("err = %v", err)
	}

	r = &mockRunner{responses: map[string]string{"tx slashing": "nothing useful"}}
	c = dial(t, &fakeSigner{}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)
	if _, err := c.Simulate(ctx, "sei1operator", unjail, ""); err == nil {
		t.Error("expected missing estimate error")
	}
	if _, err := c.Simulate(ctx, "sei1operator", append(unjail, unjail...), ""); err == nil {
		t.Error("expected single message error")
	}
	if _, err := c.Simulate(ctx, "sei1operator", []amino.Msg{amino.MsgSend{}}, ""); err == nil {
		t.Error("expected unsupported message error")
	}
	_ = c.Close()
	if _, err := c.Simulate(ctx, "sei1operator", unjail, ""); err == nil {
		t.Error("expected error after Close")
	}
}

const accountJSON = `{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","address":"sei1operator","account_number":"42","sequence":"7"}}`

func TestSignAndBroadcast(t *testing.T) {
	tests := []struct {
		name string
		mode string
	}{
		{"direct", wallet.FlagSignDirect},
		{"amino", wallet.FlagSignAmino},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var unsignedBody []byte
			r := &mockRunner{responses: map[string]string{
				"query auth":   accountJSON,
				"tx sign":      "",
				"tx broadcast": "gas estimate: 1\n" + `{"height":"0","txhash":"ABC123","codespace":"","code":0,"raw_log":"[]"}`,
			}}
			r.onCall = func(args []string) {
				if args[0] == "tx" && args[1] == "sign" {
					unsignedBody, _ = os.ReadFile(args[2])
				}
			}
			c := dial(t, &fakeSigner{mode: tt.mode}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)

			f := fee.New("90000", "0.02", "usei")
			res, err := c.SignAndBroadcast(context.Background(), "sei1operator", []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}, f, "memo")
			if err != nil {
				t.Fatalf("SignAndBroadcast error: %v", err)
			}
			if res.Code != 0 || res.TxHash != "ABC123" || res.SignMode != tt.mode {
				t.Errorf("result = %+v", res)
			}
			if (res.SignDoc != nil) != (tt.mode == wallet.FlagSignAmino) {
				t.Errorf("SignDoc presence wrong for %s", tt.mode)
			}
			if res.SignDoc != nil && res.SignDoc.Msgs[0].Type != "cosmos-sdk/MsgUnjail" {
				t.Errorf("sign doc msgs = %+v", res.SignDoc.Msgs)
			}

			sign := strings.Join(r.find("tx sign"), " ")
			for _, want := range []string{"--sign-mode " + tt.mode, "--offline", "--account-number 42", "--sequence 7", "--from sei1operator"} {
				if !strings.Contains(sign, want) {
					t.Errorf("sign args %q missing %q", sign, want)
				}
			}
			var tx struct {
				Body struct {
					Memo     string            `json:"memo"`
					Messages []json.RawMessage `json:"messages"`
				} `json:"body"`
				AuthInfo struct {
					Fee struct {
						Amount   []amino.Coin `json:"amount"`
						GasLimit string       `json:"gas_limit"`
					} `json:"fee"`
				} `json:"auth_info"`
			}
			if err := json.Unmarshal(unsignedBody, &tx); err != nil {
				t.Fatalf("unsigned tx: %v", err)
			}
			if tx.Body.Memo != "memo" || tx.AuthInfo.Fee.GasLimit != "90000" || tx.AuthInfo.Fee.Amount[0].Amount != "1800" {
				t.Errorf("unsigned tx = %s", unsignedBody)
			}
			if !strings.Contains(string(tx.Body.Messages[0]), `"validator_addr":"seivaloper1abc"`) {
				t.Errorf("message = %s", tx.Body.Messages[0])
			}
		})
	}
}

func TestSignAndBroadcast_Rejected(t *testing.T) {
	r := &mockRunner{responses: map[string]string{
		"query auth":   `{"@type":"/cosmos.auth.v1beta1.BaseAccount","account_number":"3"}`,
		"tx broadcast": `{"height":"0","txhash":"DEF456","codespace":"slashing","code":5,"raw_log":"validator not jailed"}`,
	}}
	c := dial(t, &fakeSigner{mode: wallet.FlagSignDirect}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)
	res, err := c.SignAndBroadcast(context.Background(), "sei1operator", []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}, fee.New("", "", "usei"), "")
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if res.Code != 5 || res.RawLog != "validator not jailed" || res.TxHash != "DEF456" || res.Codespace != "slashing" {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(strings.Join(r.find("tx sign"), " "), "--sequence 0") {
		t.Error("missing sequence should default to 0")
	}
}

func TestSignAndBroadcast_Failures(t *testing.T) {
	unjail := []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}
	f := fee.New("100000", "0.02", "usei")

	tests := []struct {
		name      string
		responses map[string]string
		errs      map[string]error
		want      string
	}{
		{
			name:      "account missing",
			responses: map[string]string{"query auth": "Error: rpc error: code = NotFound desc = account sei1operator not found"},
			errs:      map[string]error{"query auth": errors.New("exit status 1")},
			want:      "query account",
		},
		{
			name:      "sign fails",
			responses: map[string]string{"query auth": accountJSON, "tx sign": "Error: sei1operator: key not found"},
			errs:      map[string]error{"tx sign": errors.New("exit status 1")},
			want:      "sign: Error: sei1operator: key not found",
		},
		{
			name:      "broadcast transport",
			responses: map[string]string{"query auth": accountJSON, "tx broadcast": "Error: post failed: connection refused"},
			errs:      map[string]error{"tx broadcast": errors.New("exit status 1")},
			want:      "broadcast:",
		},
		{
			name:      "broadcast garbage",
			responses: map[string]string{"query auth": accountJSON, "tx broadcast": "ok"},
			want:      "parse broadcast response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockRunner{responses: tt.responses, errs: tt.errs}
			c := dial(t, &fakeSigner{mode: wallet.FlagSignDirect}, &fakeNode{status: node.Status{Network: "pacific-1"}}, r)
			_, err := c.SignAndBroadcast(context.Background(), "sei1operator", unjail, f, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSignAndBroadcast_AminoNeedsConverter(t *testing.T) {
	r := &mockRunner{responses: map[string]string{"query auth": accountJSON}}
	n := &fakeNode{status: node.Status{Network: "pacific-1"}}
	c, err := BinaryDialer{}.Dial(context.Background(), "https://x:443", &fakeSigner{mode: wallet.FlagSignAmino}, Options{
		Chain:      sei(),
		Registry:   amino.DefaultRegistry().WithUnjail(),
		Converters: amino.DefaultConverters(),
		Runner:     r,
		NewNode:    func(string) node.Client { return n },
		Logger:     log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.SignAndBroadcast(context.Background(), "sei1operator", []amino.Msg{amino.NewMsgUnjail("seivaloper1abc")}, fee.New("1", "1", "usei"), "")
	if !errors.Is(err, amino.ErrUnregisteredType) {
		t.Fatalf("err = %v, want ErrUnregisteredType", err)
	}
	if r.find("tx sign") != nil {
		t.Error("nothing should be signed without a converter")
	}
}

func TestWaitForTx(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	t.Run("subscription", func(t *testing.T) {
		sub := make(chan node.TxResult, 1)
		sub <- node.TxResult{Hash: "ABC", Height: 10}
		n := &fakeNode{status: node.Status{Network: "pacific-1"}, sub: sub, txResults: []error{node.ErrTxNotFound}}
		c := dial(t, &fakeSigner{}, n, &mockRunner{})
		r, err := c.WaitForTx(ctx, "ABC")
		if err != nil || r.Height != 10 {
			t.Errorf("WaitForTx = %+v, %v", r, err)
		}
	})

	t.Run("already committed", func(t *testing.T) {
		n := &fakeNode{status: node.Status{Network: "pacific-1"}, sub: make(chan node.TxResult), tx: node.TxResult{Height: 11}}
		c := dial(t, &fakeSigner{}, n, &mockRunner{})
		r, err := c.WaitForTx(ctx, "ABC")
		if err != nil || r.Height != 11 {
			t.Errorf("WaitForTx = %+v, %v", r, err)
		}
	})

	t.Run("polling fallback", func(t *testing.T) {
		n := &fakeNode{
			status:    node.Status{Network: "pacific-1"},
			subErr:    errors.New("websocket: bad handshake"),
			txResults: []error{node.ErrTxNotFound, node.ErrTxNotFound},
			tx:        node.TxResult{Height: 12},
		}
		c := dial(t, &fakeSigner{}, n, &mockRunner{})
		r, err := c.WaitForTx(ctx, "ABC")
		if err != nil || r.Height != 12 {
			t.Errorf("WaitForTx = %+v, %v", r, err)
		}
		if n.txCalls != 3 {
			t.Errorf("txCalls = %d, want 3", n.txCalls)
		}
	})

	t.Run("context done", func(t *testing.T) {
		short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		n := &fakeNode{status: node.Status{Network: "pacific-1"}, sub: make(chan node.TxResult), txResults: []error{node.ErrTxNotFound}}
		c := dial(t, &fakeSigner{}, n, &mockRunner{})
		if _, err := c.WaitForTx(short, "ABC"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v", err)
		}
	})
}
