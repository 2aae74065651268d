package main

import (
	"context"
	"strings"
	"time"

	"github.com/pushchain/unjail-console/internal/exitcodes"
	"github.com/pushchain/unjail-console/internal/session"
)

// connectSession connects the configured chain, sign mode and endpoint.
func connectSession(ctx context.Context, d *Deps) (session.State, error) {
	opt, err := d.selectedChain()
	if err != nil {
		return session.State{}, err
	}
	ctx, cancel := withTimeout(ctx, d.Cfg.ConnectTimeout)
	defer cancel()
	return d.Connector.Connect(ctx, session.ConnectRequest{
		ChainKey: opt.Key,
		Mode:     d.Cfg.SignMode,
		RPC:      d.Cfg.Endpoint(opt),
	})
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// validatorArg takes the operator address from --validator or the single
// positional argument.
func validatorArg(flag string, args []string) (string, error) {
	v := strings.TrimSpace(flag)
	if v == "" && len(args) > 0 {
		v = strings.TrimSpace(args[0])
	}
	if v == "" {
		return "", exitcodes.New(exitcodes.KindInvalidValidatorAddress, "validator operator address is required (--validator)")
	}
	return v, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
