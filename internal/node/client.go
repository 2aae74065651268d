package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client defines the RPC/WS client surface area we depend on.
type Client interface {
	Status(ctx context.Context) (Status, error)
	Tx(ctx context.Context, hash string) (TxResult, error)
	SubscribeTx(ctx context.Context, hash string) (<-chan TxResult, error)
}

type Status struct {
	NodeID     string
	Moniker    string
	Network    string // chain-id
	Version    string
	CatchingUp bool
	Height     int64
}

// TxResult is the outcome of a committed transaction.
type TxResult struct {
	Hash      string `json:"hash" yaml:"hash"`
	Height    int64  `json:"height" yaml:"height"`
	Code      uint32 `json:"code" yaml:"code"`
	Codespace string `json:"codespace,omitempty" yaml:"codespace,omitempty"`
	Log       string `json:"log,omitempty" yaml:"log,omitempty"`
	GasWanted int64  `json:"gas_wanted" yaml:"gas_wanted"`
	GasUsed   int64  `json:"gas_used" yaml:"gas_used"`
}

// ErrTxNotFound is returned by Tx while the transaction is not yet indexed.
var ErrTxNotFound = errors.New("tx not found")

type httpClient struct {
	http  *http.Client
	base  string // e.g. https://sei-rpc.polkachu.com:443
	wsURL string // e.g. wss://sei-rpc.polkachu.com:443/websocket
}

// New constructs a JSON-RPC client with sane timeouts. The websocket URL is
// derived from base.
func New(base string) Client {
	base = NormalizeEndpoint(base)
	return &httpClient{
		http:  &http.Client{Timeout: 10 * time.Second},
		base:  base,
		wsURL: deriveWS(base),
	}
}

// NormalizeEndpoint adds a scheme to bare host:port endpoints (https for
// port 443, http otherwise) and trims trailing slashes.
func NormalizeEndpoint(rpc string) string {
	rpc = strings.TrimRight(strings.TrimSpace(rpc), "/")
	if rpc == "" || strings.Contains(rpc, "://") {
		return rpc
	}
	if strings.HasSuffix(rpc, ":443") {
		return "https://" + rpc
	}
	return "http://" + rpc
}

func deriveWS(base string) string {
	// http://host:port -> ws://host:port/websocket
	// https:// -> wss://
	if strings.HasPrefix(base, "http://") {
		return "ws://" + strings.TrimPrefix(base, "http://") + "/websocket"
	}
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://") + "/websocket"
	}
	return "ws://" + base + "/websocket"
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// get issues a GET against the JSON-RPC URI endpoint and decodes "result"
// into out.
func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var payload struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: %s", path, resp.Status)
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if payload.Error != nil {
		return payload.Error
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", path, resp.Status)
	}
	return json.Unmarshal(payload.Result, out)
}

func (c *httpClient) Status(ctx context.Context) (Status, error) {
	var result struct {
		NodeInfo struct {
			ID      string `json:"id"`
			Moniker string `json:"moniker"`
			Network string `json:"network"`
			Version string `json:"version"`
		} `json:"node_info"`
		SyncInfo struct {
			CatchingUp bool   `json:"catching_up"`
			Height     string `json:"latest_block_height"`
		} `json:"sync_info"`
	}
	if err := c.get(ctx, "/status", &result); err != nil {
		return Status{}, err
	}
	h, _ := strconv.ParseInt(result.SyncInfo.Height, 10, 64)
	return Status{
		NodeID:     result.NodeInfo.ID,
		Moniker:    result.NodeInfo.Moniker,
		Network:    result.NodeInfo.Network,
		Version:    result.NodeInfo.Version,
		CatchingUp: result.SyncInfo.CatchingUp,
		Height:     h,
	}, nil
}

type abciResult struct {
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace"`
	Log       string `json:"log"`
	GasWanted string `json:"gas_wanted"`
	GasUsed   string `json:"gas_used"`
}

func (r abciResult) toTxResult(hash, height string) TxResult {
	h, _ := strconv.ParseInt(height, 10, 64)
	wanted, _ := strconv.ParseInt(r.GasWanted, 10, 64)
	used, _ := strconv.ParseInt(r.GasUsed, 10, 64)
	return TxResult{
		Hash:      strings.ToUpper(hash),
		Height:    h,
		Code:      r.Code,
		Codespace: r.Codespace,
		Log:       r.Log,
		GasWanted: wanted,
		GasUsed:   used,
	}
}

// Tx looks up a committed transaction by hash.
func (c *httpClient) Tx(ctx context.Context, hash string) (TxResult, error) {
	q := url.Values{}
	q.Set("hash", "0x"+strings.TrimPrefix(strings.ToUpper(hash), "0X"))
	var result struct {
		Hash     string     `json:"hash"`
		Height   string     `json:"height"`
		TxResult abciResult `json:"tx_result"`
	}
	if err := c.get(ctx, "/tx?"+q.Encode(), &result); err != nil {
		var re *rpcError
		if errors.As(err, &re) && strings.Contains(re.Data+re.Message, "not found") {
			return TxResult{}, ErrTxNotFound
		}
		return TxResult{}, err
	}
	return result.TxResult.toTxResult(result.Hash, result.Height), nil
}

func (c *httpClient) SubscribeTx(ctx context.Context, hash string) (<-chan TxResult, error) {
	return DialAndSubscribeTx(ctx, c.wsURL, hash)
}
