package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pushchain/unjail-console/internal/node"
	"github.com/pushchain/unjail-console/internal/session"
)

// Result messages of the actions run off the UI goroutine.
type (
	connectedMsg struct {
		state session.State
		err   error
	}
	simulatedMsg struct {
		res session.SimulateResult
		err error
	}
	broadcastMsg struct {
		out session.BroadcastOutcome
		err error
	}
	includedMsg struct {
		res node.TxResult
		err error
	}
)

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

func connectCmd(c *session.Connector, req session.ConnectRequest, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		st, err := c.Connect(ctx, req)
		return connectedMsg{state: st, err: err}
	}
}

func simulateCmd(t *session.Transactor, valoper, memo string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		res, err := t.SimulateUnjail(ctx, valoper, memo)
		return simulatedMsg{res: res, err: err}
	}
}

func broadcastCmd(t *session.Transactor, req session.BroadcastRequest, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		out, err := t.BroadcastUnjail(ctx, req)
		return broadcastMsg{out: out, err: err}
	}
}

func waitCmd(t *session.Transactor, hash string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		res, err := t.WaitForInclusion(ctx, hash)
		return includedMsg{res: res, err: err}
	}
}
