package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/runner"
)

// KeyringOptions configures the keyring provider.
type KeyringOptions struct {
	BinPath    string
	HomeDir    string
	Backend    string
	MinVersion string // e.g. v3.0.0; empty skips the check
	Runner     runner.Runner
	Logger     *log.Logger
}

// Keyring is a Provider backed by `<bin> keys`. Enable loads the key list;
// signers serve accounts from it.
type Keyring struct {
	opts KeyringOptions

	mu       sync.Mutex
	chainID  string
	version  string
	accounts []Account
	warnings []string
}

func NewKeyring(opts KeyringOptions) *Keyring {
	if opts.Runner == nil {
		opts.Runner = runner.Exec{}
	}
	if opts.Backend == "" {
		opts.Backend = "os"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Keyring{opts: opts}
}

func (k *Keyring) keyringArgs() []string {
	args := []string{"--keyring-backend", k.opts.Backend}
	if k.opts.HomeDir != "" {
		args = append(args, "--home", k.opts.HomeDir)
	}
	return args
}

// Enable checks that the binary runs and the keyring can be read.
func (k *Keyring) Enable(ctx context.Context, chainID string) error {
	if k.opts.BinPath == "" {
		return exitcodes.New(exitcodes.KindWalletUnavailable, "no chain binary configured")
	}
	out, err := k.opts.Runner.Run(ctx, k.opts.BinPath, "version")
	if err != nil {
		return exitcodes.Wrap(exitcodes.KindWalletUnavailable, k.opts.BinPath+" is not runnable", runner.Failure(out, err))
	}
	version := parseVersion(string(out))
	var warnings []string
	if w := versionWarning(k.opts.BinPath, version, k.opts.MinVersion); w != "" {
		k.opts.Logger.Warn(w)
		warnings = append(warnings, w)
	}

	args := append([]string{"keys", "list", "--output", "json"}, k.keyringArgs()...)
	out, err = k.opts.Runner.Run(ctx, k.opts.BinPath, args...)
	if err != nil {
		return exitcodes.Wrap(exitcodes.KindWalletUnavailable, "read keyring", runner.Failure(out, err))
	}
	accounts, err := parseKeys(out)
	if err != nil {
		return exitcodes.Wrap(exitcodes.KindWalletUnavailable, "read keyring", err)
	}
	k.opts.Logger.Debug("keyring enabled", "chain", chainID, "keys", len(accounts), "version", version)

	k.mu.Lock()
	k.chainID = chainID
	k.version = version
	k.accounts = accounts
	k.warnings = warnings
	k.mu.Unlock()
	return nil
}

// Warnings returns non-fatal findings from the last Enable.
func (k *Keyring) Warnings() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.warnings...)
}

// Version returns the binary version seen by the last Enable.
func (k *Keyring) Version() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.version
}

// Factories offers generic and auto signers always, and an amino-only signer
// when the keyring holds a ledger key.
func (k *Keyring) Factories() Factories {
	f := Factories{
		Auto:    k.factory("", true),
		Generic: k.factory(FlagSignDirect, false),
	}
	if k.hasLedger() {
		f.AminoOnly = k.factory(FlagSignAmino, false)
	}
	return f
}

func (k *Keyring) hasLedger() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, a := range k.accounts {
		if a.Type == "ledger" {
			return true
		}
	}
	return false
}

func (k *Keyring) factory(mode string, auto bool) Factory {
	return func(_ context.Context, chainID string) (Signer, error) {
		k.mu.Lock()
		enabled := k.chainID
		k.mu.Unlock()
		if enabled != chainID {
			return nil, fmt.Errorf("keyring not enabled for chain %s", chainID)
		}
		return &keyringSigner{k: k, chainID: chainID, mode: mode, auto: auto}, nil
	}
}

type keyringSigner struct {
	k       *Keyring
	chainID string
	mode    string
	auto    bool
}

func (s *keyringSigner) ChainID() string { return s.chainID }

func (s *keyringSigner) Accounts(context.Context) ([]Account, error) {
	s.k.mu.Lock()
	defer s.k.mu.Unlock()
	return append([]Account(nil), s.k.accounts...), nil
}

func (s *keyringSigner) SupportsDirect() bool { return s.auto || s.mode == FlagSignDirect }
func (s *keyringSigner) SupportsAmino() bool  { return s.auto || s.mode == FlagSignAmino }

func (s *keyringSigner) BinPath() string { return s.k.opts.BinPath }

func (s *keyringSigner) KeyringArgs() []string { return s.k.keyringArgs() }

// SignModeFor picks amino-json for ledger keys when the signer is automatic.
func (s *keyringSigner) SignModeFor(address string) string {
	if !s.auto {
		return s.mode
	}
	s.k.mu.Lock()
	defer s.k.mu.Unlock()
	for _, a := range s.k.accounts {
		if a.Address == address && a.Type == "ledger" {
			return FlagSignAmino
		}
	}
	return FlagSignDirect
}

func parseKeys(out []byte) ([]Account, error) {
	payload := runner.JSON(out)
	if payload == nil {
		return []Account{}, nil
	}
	var accounts []Account
	if err := json.Unmarshal(payload, &accounts); err != nil {
		return nil, fmt.Errorf("parse keys list: %w", err)
	}
	return accounts, nil
}

// parseVersion extracts a semver string from `<bin> version` output, adding
// the leading "v" when missing.
func parseVersion(out string) string {
	line := runner.LastLine(out)
	if f := strings.Fields(line); len(f) > 0 {
		line = f[len(f)-1]
	}
	if line != "" && !strings.HasPrefix(line, "v") {
		line = "v" + line
	}
	return line
}

func versionWarning(bin, have, minimum string) string {
	if minimum == "" {
		return ""
	}
	if !semver.IsValid(have) {
		return fmt.Sprintf("could not determine %s version (got %q)", bin, have)
	}
	if semver.Compare(have, minimum) < 0 {
		return fmt.Sprintf("%s %s is older than the supported minimum %s", bin, have, minimum)
	}
	return ""
}
