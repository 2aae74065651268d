package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDialAndSubscribeTx(t *testing.T) {
	skipIfNoListen(t)

	gotQuery := make(chan string, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{"jsonrpc"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		var sub struct {
			Params struct {
				Query string `json:"query"`
			} `json:"params"`
		}
		if err := c.ReadJSON(&sub); err != nil {
			return
		}
		gotQuery <- sub.Params.Query
		// subscription ack, then the event
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"result":{"data":{"type":"tendermint/event/Tx","value":{"TxResult":{"height":"42","result":{"code":0,"gas_used":"70000"}}}},"events":{"tx.hash":["ABC123"]}}}`))
		_, _, _ = c.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/websocket"
	ch, err := DialAndSubscribeTx(ctx, wsURL, "abc123")
	if err != nil {
		t.Fatalf("dial/subscribe error: %v", err)
	}

	select {
	case q := <-gotQuery:
		if q != "tm.event='Tx' AND tx.hash='ABC123'" {
			t.Errorf("query = %q", q)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for subscribe")
	}

	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		if r.Height != 42 || r.Hash != "ABC123" || r.GasUsed != 70000 {
			t.Fatalf("got %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for tx event")
	}

	if _, ok := <-ch; ok {
		t.Error("channel should close after the event")
	}
}

func TestDialAndSubscribeTx_ContextCancel(t *testing.T) {
	skipIfNoListen(t)

	upgrader := websocket.Upgrader{Subprotocols: []string{"jsonrpc"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := DialAndSubscribeTx(ctx, "ws://"+strings.TrimPrefix(srv.URL, "http://"), "abc")
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("subscription did not stop on cancel")
	}
}

func TestParseTxEvent(t *testing.T) {
	if _, ok := parseTxEvent([]byte(`{"result":{}}`), "x"); ok {
		t.Error("ack should not parse as event")
	}
	if _, ok := parseTxEvent([]byte(`garbage`), "x"); ok {
		t.Error("garbage should not parse")
	}
	r, ok := parseTxEvent([]byte(`{"result":{"data":{"value":{"TxResult":{"height":"9","result":{"code":5,"codespace":"sdk","log":"insufficient fee"}}}}}}`), "deadbeef")
	if !ok {
		t.Fatal("expected event")
	}
	if r.Code != 5 || r.Codespace != "sdk" || r.Hash != "DEADBEEF" || r.Height != 9 {
		t.Errorf("parsed %+v", r)
	}
}
