package main

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/activity"
	"github.com/pushchain/unjail-console/internal/chain"
	"github.com/pushchain/unjail-console/internal/client"
	"github.com/pushchain/unjail-console/internal/config"
	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/session"
	"github.com/pushchain/unjail-console/internal/ui"
	"github.com/pushchain/unjail-console/internal/wallet"
)

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg        config.Config
	Chains     *chain.Registry
	Wallet     wallet.Provider
	Session    *session.Session
	Connector  *session.Connector
	Transactor *session.Transactor
	Log        *activity.Log
	Logger     *log.Logger
	Printer    ui.Printer
}

// newLogger returns the structured logger all activity is forwarded to.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "unjail",
	})
	if flagDebug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// newDeps creates production dependencies from the current flags and config.
// Logs go to logOut.
func newDeps(logOut io.Writer) (*Deps, error) {
	cfg, err := loadCfg()
	if err != nil {
		return nil, err
	}
	chains, err := cfg.Registry()
	if err != nil {
		return nil, exitcodes.Wrap(exitcodes.KindInvalidInput, "load chains", err)
	}
	logger := newLogger(logOut)
	keyrings := &wallet.ChainKeyrings{New: func(chainID string) (*wallet.Keyring, error) {
		opt, ok := byChainID(chains, chainID)
		if !ok {
			return nil, exitcodes.Newf(exitcodes.KindUnknownChain, "no chain with id %q", chainID)
		}
		return wallet.NewKeyring(wallet.KeyringOptions{
			BinPath:    cfg.Binary(opt),
			HomeDir:    cfg.HomeDir,
			Backend:    cfg.KeyringBackend,
			MinVersion: opt.MinBinaryVersion,
			Logger:     logger,
		}), nil
	}}
	return assemble(cfg, chains, keyrings, client.BinaryDialer{}, logger, getPrinter()), nil
}

// assemble wires the session controllers around w and dialer.
func assemble(cfg config.Config, chains *chain.Registry, w wallet.Provider, dialer client.Dialer, logger *log.Logger, p ui.Printer) *Deps {
	al := activity.New(logger)
	sess := session.New()
	return &Deps{
		Cfg:    cfg,
		Chains: chains,
		Wallet: w,
		Connector: &session.Connector{
			Session:       sess,
			Chains:        chains,
			Wallet:        w,
			Dialer:        dialer,
			ClientOptions: client.Options{Logger: logger},
			Log:           al,
		},
		Transactor: &session.Transactor{Session: sess, Log: al},
		Session:    sess,
		Log:        al,
		Logger:     logger,
		Printer:    p,
	}
}

func byChainID(r *chain.Registry, chainID string) (chain.Option, bool) {
	for _, o := range r.All() {
		if o.ChainID == chainID {
			return o, true
		}
	}
	return chain.Option{}, false
}

// selectedChain is the chain named by --chain or the config.
func (d *Deps) selectedChain() (chain.Option, error) {
	return d.Chains.Lookup(d.Cfg.Chain)
}
