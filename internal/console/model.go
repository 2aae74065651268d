// Package console is the interactive unjail page: chain and sign-mode
// selectors, the transaction form, a status line and the activity log.
package console

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/fee"
	"github.com/pushchain/unjail-console/internal/session"
	"github.com/pushchain/unjail-console/internal/ui"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// Options wires the page to the controllers.
type Options struct {
	Chains     *chain.Registry
	Connector  *session.Connector
	Transactor *session.Transactor
	Log        *activity.Log

	ChainKey string
	SignMode string
	RPC      string // replaces the chain default RPC when set
	GasLimit string
	GasPrice string // replaces the chain default gas price when set

	ConnectTimeout time.Duration
	TxTimeout      time.Duration
	// WaitForInclusion follows an accepted broadcast until it is committed.
	WaitForInclusion bool
}

type field int

const (
	fieldChain field = iota
	fieldMode
	fieldRPC
	fieldValoper
	fieldMemo
	fieldGasLimit
	fieldGasPrice
	fieldDenom
	fieldCount
)

var fieldLabels = [fieldCount]string{"Chain", "Sign mode", "RPC", "Validator", "Memo", "Gas limit", "Gas price", "Fee denom"}

func (f field) selector() bool { return f == fieldChain || f == fieldMode }

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusOK
	statusWarn
	statusErr
)

// Model is the Bubble Tea model of the page.
type Model struct {
	opts     Options
	chains   []chain.Option
	chainIdx int
	modes    []wallet.SignMode
	modeIdx  int
	inputs   [fieldCount]textinput.Model
	focus    field

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	logs    logPanel

	pending int
	status  string
	level   statusLevel
	width   int
	height  int
}

// New builds the page with the chain and sign mode from opts preselected.
func New(opts Options) (*Model, error) {
	if opts.Chains == nil || opts.Connector == nil || opts.Transactor == nil || opts.Log == nil {
		return nil, fmt.Errorf("console: chains, connector, transactor and log are required")
	}
	m := &Model{
		opts:    opts,
		chains:  opts.Chains.All(),
		modes:   wallet.SignModes(),
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:  "Not connected",
	}
	if len(m.chains) == 0 {
		return nil, fmt.Errorf("console: no chains registered")
	}

	chainKey := opts.ChainKey
	if chainKey == "" {
		chainKey = opts.Chains.Default().Key
	}
	opt, err := opts.Chains.Lookup(chainKey)
	if err != nil {
		return nil, err
	}
	for i, c := range m.chains {
		if c.Key == opt.Key {
			m.chainIdx = i
		}
	}
	if opts.SignMode != "" {
		mode, err := wallet.ParseSignMode(opts.SignMode)
		if err != nil {
			return nil, err
		}
		for i, md := range m.modes {
			if md == mode {
				m.modeIdx = i
			}
		}
	}

	placeholders := [fieldCount]string{
		fieldRPC:      "https://rpc.example.com:443",
		fieldValoper:  opt.ValoperPrefix + "1...",
		fieldMemo:     "optional",
		fieldGasLimit: strconv.FormatUint(fee.DefaultGasLimit, 10),
		fieldGasPrice: fee.DefaultGasPrice,
		fieldDenom:    opt.FeeDenom,
	}
	for f := fieldRPC; f < fieldCount; f++ {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[f]
		in.CharLimit = 256
		in.Width = 60
		in.TextStyle = lipgloss.NewStyle()
		in.PlaceholderStyle = mutedStyle
		m.inputs[f] = in
	}
	m.applyChain(opt)
	if rpc := strings.TrimSpace(opts.RPC); rpc != "" {
		m.inputs[fieldRPC].SetValue(rpc)
	}
	gasPrice := strings.TrimSpace(opts.GasPrice)
	if gasPrice == "" {
		gasPrice = fee.DefaultGasPrice
	}
	m.inputs[fieldGasPrice].SetValue(gasPrice)
	gasLimit := opts.GasLimit
	if gasLimit == "" {
		gasLimit = strconv.FormatUint(fee.DefaultGasLimit, 10)
	}
	m.inputs[fieldGasLimit].SetValue(gasLimit)

	m.focus = fieldValoper
	m.inputs[fieldValoper].Focus()
	return m, nil
}

// applyChain prefills the chain-dependent fields. The gas price is left as
// entered; the chain's suggested price only shows as its placeholder.
func (m *Model) applyChain(opt chain.Option) {
	m.inputs[fieldRPC].SetValue(opt.DefaultRPC)
	m.inputs[fieldDenom].SetValue(opt.FeeDenom)
	m.inputs[fieldDenom].Placeholder = opt.FeeDenom
	m.inputs[fieldValoper].Placeholder = opt.ValoperPrefix + "1..."
	if opt.DefaultGasPrice != "" {
		m.inputs[fieldGasPrice].Placeholder = opt.DefaultGasPrice
	}
}

// Init initializes the page (Bubble Tea lifecycle)
func (m *Model) Init() tea.Cmd {
	m.spinner.Style = lipgloss.NewStyle().Foreground(cAccent2)
	return textinput.Blink
}

// Update handles messages (Bubble Tea lifecycle)
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		for f := fieldRPC; f < fieldCount; f++ {
			m.inputs[f].Width = max(msg.Width-18, 20)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.done()
		if msg.err != nil {
			m.setStatus(statusErr, "Connect failed: %v", msg.err)
			return m, nil
		}
		m.setStatus(statusOK, "Connected to %s as %s", msg.state.Chain.ChainID, msg.state.Address)
		return m, nil

	case simulatedMsg:
		m.done()
		if msg.err != nil {
			m.setStatus(statusErr, "Simulation failed: %v", msg.err)
			return m, nil
		}
		m.inputs[fieldGasLimit].SetValue(strconv.FormatUint(msg.res.Proposed, 10))
		m.setStatus(statusOK, "Estimated gas %s; gas limit set to %s",
			ui.FormatNumber(msg.res.Estimated), ui.FormatNumber(msg.res.Proposed))
		return m, nil

	case broadcastMsg:
		m.done()
		switch {
		case msg.err != nil:
			m.setStatus(statusErr, "Broadcast failed: %v", msg.err)
		case !msg.out.Accepted():
			m.setStatus(statusErr, "Rejected with code %d: %s", msg.out.Result.Code, msg.out.Result.RawLog)
		default:
			m.setStatus(statusOK, "Accepted: %s", msg.out.Result.TxHash)
			if m.opts.WaitForInclusion && msg.out.Result.TxHash != "" {
				return m, m.start(waitCmd(m.opts.Transactor, msg.out.Result.TxHash, m.opts.TxTimeout))
			}
		}
		return m, nil

	case includedMsg:
		m.done()
		switch {
		case msg.err != nil:
			m.setStatus(statusWarn, "Inclusion not confirmed: %v", msg.err)
		case msg.res.Code != 0:
			m.setStatus(statusErr, "Failed at height %d with code %d", msg.res.Height, msg.res.Code)
		default:
			m.setStatus(statusOK, "Included at height %d: %s", msg.res.Height, msg.res.Hash)
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.opts.Connector.Session.Phase() != session.Idle {
			m.opts.Connector.Disconnect()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Connect):
		return m, m.connect()
	case key.Matches(msg, m.keys.Disconnect):
		m.opts.Connector.Disconnect()
		m.setStatus(statusInfo, "Disconnected")
		return m, nil
	case key.Matches(msg, m.keys.Simulate):
		return m, m.simulate()
	case key.Matches(msg, m.keys.Unjail):
		return m, m.unjail()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case m.focus.selector() && key.Matches(msg, m.keys.Left):
		m.cycle(-1)
		return m, nil
	case m.focus.selector() && key.Matches(msg, m.keys.Right):
		m.cycle(1)
		return m, nil
	}
	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	if m.focus.selector() {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	if !m.focus.selector() {
		m.inputs[m.focus].Blur()
	}
	m.focus = f
	if f.selector() {
		return nil
	}
	return m.inputs[f].Focus()
}

func (m *Model) cycle(delta int) {
	switch m.focus {
	case fieldChain:
		m.chainIdx = (m.chainIdx + delta + len(m.chains)) % len(m.chains)
		opt, err := m.opts.Connector.SwitchChain(m.chains[m.chainIdx].Key)
		if err != nil {
			m.setStatus(statusErr, "%v", err)
			return
		}
		m.applyChain(opt)
		m.setStatus(statusInfo, "Chain set to %s", opt.Label)
	case fieldMode:
		m.modeIdx = (m.modeIdx + delta + len(m.modes)) % len(m.modes)
		mode := m.modes[m.modeIdx]
		if m.opts.Connector.Session.Snapshot().Connected() {
			m.opts.Log.Infof("sign mode set to %s; reconnect to apply", mode)
		} else {
			m.opts.Log.Infof("sign mode set to %s", mode)
		}
		m.setStatus(statusInfo, "Sign mode %s", mode)
	}
}

// start runs cmd with the spinner going.
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(m.spinner.Tick, cmd)
	}
	return cmd
}

func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) connect() tea.Cmd {
	req := session.ConnectRequest{
		ChainKey: m.chains[m.chainIdx].Key,
		Mode:     string(m.modes[m.modeIdx]),
		RPC:      m.inputs[fieldRPC].Value(),
	}
	m.setStatus(statusInfo, "Connecting to %s...", m.chains[m.chainIdx].ChainID)
	return m.start(connectCmd(m.opts.Connector, req, m.opts.ConnectTimeout))
}

func (m *Model) simulate() tea.Cmd {
	m.setStatus(statusInfo, "Simulating...")
	return m.start(simulateCmd(m.opts.Transactor,
		m.inputs[fieldValoper].Value(), m.inputs[fieldMemo].Value(), m.opts.TxTimeout))
}

func (m *Model) unjail() tea.Cmd {
	req := session.BroadcastRequest{
		Validator: m.inputs[fieldValoper].Value(),
		Memo:      m.inputs[fieldMemo].Value(),
		GasLimit:  m.inputs[fieldGasLimit].Value(),
		GasPrice:  m.inputs[fieldGasPrice].Value(),
		FeeDenom:  m.inputs[fieldDenom].Value(),
	}
	m.setStatus(statusInfo, "Waiting for signature and broadcast...")
	return m.start(broadcastCmd(m.opts.Transactor, req, m.opts.TxTimeout))
}

func (m *Model) setStatus(level statusLevel, format string, args ...any) {
	m.level = level
	m.status = fmt.Sprintf(format, args...)
}

// View renders the page (Bubble Tea lifecycle)
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var rows []string
	rows = append(rows, m.header(width), "")
	for f := fieldChain; f < fieldCount; f++ {
		label := labelStyle
		if f == m.focus {
			label = focusLabel
		}
		rows = append(rows, label.Render(fieldLabels[f])+m.fieldView(f))
	}
	rows = append(rows, "", m.statusLine())

	helpView := m.help.View(m.keys)
	logLines := 8
	if m.height > 0 {
		used := len(rows) + lipgloss.Height(helpView) + 3
		logLines = max(m.height-used, 3)
	}
	rows = append(rows, m.logs.render(m.opts.Log.Tail(logLines), width, logLines), helpView)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) header(width int) string {
	title := titleStyle.Render("Unjail Console")
	st := m.opts.Connector.Session.Snapshot()
	var ind string
	switch {
	case st.Connected():
		ind = okStyle.Render("● "+st.Chain.ChainID) + mutedStyle.Render("  ") +
			ui.ShortAddress(st.Address, max((width-40)/2, 8))
	case m.opts.Connector.Session.Phase() == session.Connecting:
		ind = warnStyle.Render("◌ connecting")
	default:
		ind = mutedStyle.Render("○ not connected")
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(ind)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + ind
}

func (m *Model) fieldView(f field) string {
	switch f {
	case fieldChain:
		names := make([]string, len(m.chains))
		for i, c := range m.chains {
			names[i] = c.Key
		}
		return renderOptions(names, m.chainIdx, f == m.focus)
	case fieldMode:
		names := make([]string, len(m.modes))
		for i, md := range m.modes {
			names[i] = string(md)
		}
		return renderOptions(names, m.modeIdx, f == m.focus)
	}
	return m.inputs[f].View()
}

func renderOptions(names []string, selected int, focused bool) string {
	parts := make([]string, len(names))
	for i, n := range names {
		if i == selected {
			n = "[" + n + "]"
			if focused {
				parts[i] = selectedStyle.Render(n)
			} else {
				parts[i] = n
			}
			continue
		}
		parts[i] = optionStyle.Render(" " + n + " ")
	}
	return strings.Join(parts, " ")
}

func (m *Model) statusLine() string {
	var style lipgloss.Style
	switch m.level {
	case statusOK:
		style = okStyle
	case statusWarn:
		style = warnStyle
	case statusErr:
		style = errStyle
	default:
		style = lipgloss.NewStyle()
	}
	prefix := "  "
	if m.pending > 0 {
		prefix = m.spinner.View() + " "
	}
	return prefix + style.Render(m.status)
}
