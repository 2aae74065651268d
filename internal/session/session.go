// Package session holds one operator's connection state and the controllers
// that drive it.
package session

import (
	"sync"

	"github.com/pushchain/unjail-console/internal/amino"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// State is everything a connected session knows. The zero value is the
// disconnected state; any nil field means not connected.
type State struct {
	Chain        *chain.Option
	RPCEndpoint  string
	SignMode     wallet.SignMode
	Signer       wallet.Signer
	Capabilities wallet.Capabilities
	Address      string
	Client       client.Client
	Registry     *amino.Registry
	Converters   *amino.Converters
}

// Connected reports whether every field needed for transactions is set.
func (s State) Connected() bool {
	return s.Chain != nil && s.Address != "" && s.Client != nil &&
		s.Signer != nil && s.Registry != nil && s.Converters != nil
}

// Empty reports whether no field retains a value.
func (s State) Empty() bool {
	return s.Chain == nil && s.RPCEndpoint == "" && s.SignMode == "" &&
		s.Signer == nil && s.Capabilities == (wallet.Capabilities{}) &&
		s.Address == "" && s.Client == nil && s.Registry == nil && s.Converters == nil
}

// ConnPhase is the connection state machine.
type ConnPhase int

const (
	Idle ConnPhase = iota
	Connecting
	Connected
)

func (p ConnPhase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "idle"
}

// TxPhase is the transaction state machine.
type TxPhase int

const (
	TxIdle TxPhase = iota
	Simulating
	Broadcasting
)

func (p TxPhase) String() string {
	switch p {
	case Simulating:
		return "simulating"
	case Broadcasting:
		return "broadcasting"
	}
	return "idle"
}

// Session is one operator session. It is safe for concurrent use; the phase
// guards reject overlapping operations.
type Session struct {
	mu    sync.Mutex
	state State
	conn  ConnPhase
	tx    TxPhase
	// gen changes on every connect and disconnect so a connect that was
	// overtaken cannot commit.
	gen uint64
}

func New() *Session {
	return &Session{}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Phase() ConnPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) TxPhase() TxPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx
}

// beginConnect clears the state, enters Connecting and returns the attempt's
// generation and the client of the replaced connection, if any.
func (s *Session) beginConnect() (uint64, client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == Connecting {
		return 0, nil, exitcodes.New(exitcodes.KindBusy, "a connection attempt is already in progress")
	}
	if s.tx != TxIdle {
		return 0, nil, exitcodes.Newf(exitcodes.KindBusy, "cannot reconnect while %s", s.tx)
	}
	old := s.state.Client
	s.state = State{}
	s.conn = Connecting
	s.gen++
	return s.gen, old, nil
}

// commitConnect installs st if gen is still current.
func (s *Session) commitConnect(gen uint64, st State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.state = st
	s.conn = Connected
	return true
}

// failConnect empties the state if gen is still current.
func (s *Session) failConnect(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.state = State{}
	s.conn = Idle
}

// reset empties the state and returns the previous one.
func (s *Session) reset() (State, ConnPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, phase := s.state, s.conn
	s.state = State{}
	s.conn = Idle
	s.gen++
	return prev, phase
}

// beginTx checks the connection and enters phase. The returned func leaves it.
func (s *Session) beginTx(phase TxPhase) (State, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Connected() {
		return State{}, nil, exitcodes.New(exitcodes.KindNotConnected, "not connected; connect a wallet first")
	}
	if s.tx != TxIdle {
		return State{}, nil, exitcodes.Newf(exitcodes.KindBusy, "busy: %s in progress", s.tx)
	}
	s.tx = phase
	return s.state, func() {
		s.mu.Lock()
		s.tx = TxIdle
		s.mu.Unlock()
	}, nil
}
