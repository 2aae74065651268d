// Package wallet resolves signers from a wallet provider.
package wallet

import (
	"context"

	"github.com/pushchain/unjail-console/internal/exitcodes"
)

// Account is one key the wallet can sign with.
type Account struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Type    string `json:"type"`
	PubKey  string `json:"pubkey,omitempty"`
}

// Signer is a handle to a wallet signer bound to one chain.
type Signer interface {
	ChainID() string
}

// AccountLister is implemented by signers that can enumerate accounts.
type AccountLister interface {
	Accounts(ctx context.Context) ([]Account, error)
}

// DirectSigner is implemented by signers able to sign in direct (protobuf) mode.
type DirectSigner interface {
	SupportsDirect() bool
}

// AminoSigner is implemented by signers able to sign legacy amino JSON.
type AminoSigner interface {
	SupportsAmino() bool
}

// KeyringSigner is a signer backed by the chain binary's keyring.
type KeyringSigner interface {
	Signer
	AccountLister
	BinPath() string
	KeyringArgs() []string
	// SignModeFor returns the --sign-mode value used when signing for address.
	SignModeFor(address string) string
}

// Factory creates a signer for chainID.
type Factory func(ctx context.Context, chainID string) (Signer, error)

// Factories lists the signer factories a provider offers. Nil fields are
// unavailable.
type Factories struct {
	AminoOnly Factory
	Auto      Factory
	Generic   Factory
}

// Provider is a wallet that authorizes chains and hands out signers.
type Provider interface {
	// Enable asks the wallet to authorize chainID. It may block until the
	// operator approves.
	Enable(ctx context.Context, chainID string) error
	Factories() Factories
}

// Capabilities describes what a resolved signer can do.
type Capabilities struct {
	Accounts   bool   `json:"accounts"`
	SignDirect bool   `json:"sign_direct"`
	SignAmino  bool   `json:"sign_amino"`
	Factory    string `json:"factory"`
}

const (
	FactoryAminoOnly = "amino-only"
	FactoryAuto      = "auto"
	FactoryGeneric   = "generic"
)

// Probe inspects s for optional capabilities.
func Probe(s Signer) Capabilities {
	var c Capabilities
	if s == nil {
		return c
	}
	_, c.Accounts = s.(AccountLister)
	if d, ok := s.(DirectSigner); ok {
		c.SignDirect = d.SupportsDirect()
	}
	if a, ok := s.(AminoSigner); ok {
		c.SignAmino = a.SupportsAmino()
	}
	return c
}

// pick chooses a factory for mode: amino prefers the amino-only factory,
// direct and auto prefer the auto factory, and both fall back to generic.
func pick(mode SignMode, f Factories) (Factory, string) {
	if mode == SignModeAmino {
		if f.AminoOnly != nil {
			return f.AminoOnly, FactoryAminoOnly
		}
	} else if f.Auto != nil {
		return f.Auto, FactoryAuto
	}
	if f.Generic != nil {
		return f.Generic, FactoryGeneric
	}
	return nil, ""
}

// Resolve obtains a signer for chainID from p according to mode.
func Resolve(ctx context.Context, chainID string, mode SignMode, p Provider) (Signer, Capabilities, error) {
	if p == nil {
		return nil, Capabilities{}, exitcodes.New(exitcodes.KindWalletUnavailable, "no wallet available")
	}
	factory, name := pick(mode, p.Factories())
	if factory == nil {
		return nil, Capabilities{}, exitcodes.Newf(exitcodes.KindSignerUnavailable, "wallet offers no signer for %s mode", mode)
	}
	s, err := factory(ctx, chainID)
	if err != nil {
		return nil, Capabilities{}, exitcodes.Wrap(exitcodes.KindSignerUnavailable, "create "+name+" signer", err)
	}
	if s == nil {
		return nil, Capabilities{}, exitcodes.Newf(exitcodes.KindSignerUnavailable, "%s signer factory returned nothing", name)
	}
	caps := Probe(s)
	caps.Factory = name
	return s, caps, nil
}

// FirstAccount returns the first account of s.
func FirstAccount(ctx context.Context, s Signer) (Account, error) {
	lister, ok := s.(AccountLister)
	if !ok {
		return Account{}, exitcodes.New(exitcodes.KindUnsupportedSigner, "signer cannot list accounts")
	}
	accts, err := lister.Accounts(ctx)
	if err != nil {
		return Account{}, exitcodes.Wrap(exitcodes.KindUnsupportedSigner, "list accounts", err)
	}
	if len(accts) == 0 {
		return Account{}, exitcodes.New(exitcodes.KindNoAccounts, "wallet has no accounts for this chain")
	}
	return accts[0], nil
}
