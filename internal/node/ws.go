package node

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// TxQuery is the event query matching one transaction.
func TxQuery(hash string) string {
	return fmt.Sprintf("tm.event='Tx' AND tx.hash='%s'", strings.ToUpper(hash))
}

// DialAndSubscribeTx uses gorilla/websocket to subscribe to the Tx event of
// hash. The channel yields at most one result and is closed afterwards or
// when ctx ends.
func DialAndSubscribeTx(ctx context.Context, wsURL, hash string) (<-chan TxResult, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = "/websocket"
	}

	d := websocket.Dialer{
		Subprotocols:     []string{"jsonrpc"},
		HandshakeTimeout: 5 * time.Second,
	}
	// nolint:bodyclose
	conn, _, err := d.DialContext(ctx, u.String(), map[string][]string{"Origin": {"http://localhost"}})
	if err != nil {
		return nil, err
	}

	sub := map[string]any{
		"jsonrpc": "2.0",
		"method":  "subscribe",
		"params":  map[string]string{"query": TxQuery(hash)},
		"id":      1,
	}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return nil, err
	}

	out := make(chan TxResult, 1)
	go func() {
		defer close(out)
		defer func() {
			deadline := time.Now().Add(1500 * time.Millisecond)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
		}()
		// unblock ReadMessage when ctx ends
		stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
		defer stop()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if r, ok := parseTxEvent(msg, hash); ok {
				out <- r
				return
			}
		}
	}()
	return out, nil
}

// parseTxEvent decodes a Tx event frame; the subscription ack and other
// frames yield false.
func parseTxEvent(b []byte, hash string) (TxResult, bool) {
	var payload struct {
		Result struct {
			Data struct {
				Value struct {
					TxResult struct {
						Height string     `json:"height"`
						Result abciResult `json:"result"`
					} `json:"TxResult"`
				} `json:"value"`
			} `json:"data"`
			Events map[string][]string `json:"events"`
		} `json:"result"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return TxResult{}, false
	}
	tx := payload.Result.Data.Value.TxResult
	if tx.Height == "" {
		return TxResult{}, false
	}
	if hashes := payload.Result.Events["tx.hash"]; len(hashes) > 0 {
		hash = hashes[0]
	}
	return tx.Result.toTxResult(hash, tx.Height), true
}
