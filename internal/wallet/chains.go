package wallet

import (
	"context"
	"sync"
)

// ChainKeyrings is a Provider that keeps one Keyring per chain, so each
// chain's keys are read with that chain's binary. The keyring of the most
// recently enabled chain serves Factories and Warnings.
type ChainKeyrings struct {
	// New builds the keyring for chainID. It is called once per chain.
	New func(chainID string) (*Keyring, error)

	mu      sync.Mutex
	byChain map[string]*Keyring
	current *Keyring
}

func (c *ChainKeyrings) Enable(ctx context.Context, chainID string) error {
	c.mu.Lock()
	k, ok := c.byChain[chainID]
	if !ok {
		var err error
		if k, err = c.New(chainID); err != nil {
			c.mu.Unlock()
			return err
		}
		if c.byChain == nil {
			c.byChain = make(map[string]*Keyring)
		}
		c.byChain[chainID] = k
	}
	c.current = k
	c.mu.Unlock()
	return k.Enable(ctx, chainID)
}

// Factories is empty until a chain has been enabled.
func (c *ChainKeyrings) Factories() Factories {
	if k := c.active(); k != nil {
		return k.Factories()
	}
	return Factories{}
}

func (c *ChainKeyrings) Warnings() []string {
	if k := c.active(); k != nil {
		return k.Warnings()
	}
	return nil
}

// Version is the binary version seen by the current chain's keyring.
func (c *ChainKeyrings) Version() string {
	if k := c.active(); k != nil {
		return k.Version()
	}
	return ""
}

func (c *ChainKeyrings) active() *Keyring {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
