package chain

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"gopkg.in/yaml.v3"

	"github.com/pushchain/unjail-console/internal/exitcodes"
)

// Option describes one supported chain and its addressing conventions.
type Option struct {
	Key              string `yaml:"key" json:"key"`
	Label            string `yaml:"label" json:"label"`
	ChainID          string `yaml:"chain_id" json:"chain_id"`
	AddressPrefix    string `yaml:"address_prefix" json:"address_prefix"`
	ValoperPrefix    string `yaml:"valoper_prefix" json:"valoper_prefix"`
	FeeDenom         string `yaml:"fee_denom" json:"fee_denom"`
	DefaultRPC       string `yaml:"default_rpc" json:"default_rpc"`
	Binary           string `yaml:"binary" json:"binary"`                       // chain CLI used for keys and tx, e.g. seid
	DefaultGasPrice  string `yaml:"default_gas_price" json:"default_gas_price"` // decimal, in FeeDenom
	MinBinaryVersion string `yaml:"min_binary_version,omitempty" json:"min_binary_version,omitempty"`
}

// Sei and Cosmos Hub are the chains shipped with the console.
var builtin = []Option{
	{
		Key:              "pacific-1",
		Label:            "Sei (pacific-1)",
		ChainID:          "pacific-1",
		AddressPrefix:    "sei",
		ValoperPrefix:    "seivaloper",
		FeeDenom:         "usei",
		DefaultRPC:       "https://sei-rpc.polkachu.com:443",
		Binary:           "seid",
		DefaultGasPrice:  "0.02",
		MinBinaryVersion: "v3.0.0",
	},
	{
		Key:              "cosmoshub-4",
		Label:            "Cosmos Hub (cosmoshub-4)",
		ChainID:          "cosmoshub-4",
		AddressPrefix:    "cosmos",
		ValoperPrefix:    "cosmosvaloper",
		FeeDenom:         "uatom",
		DefaultRPC:       "https://cosmos-rpc.polkachu.com:443",
		Binary:           "gaiad",
		DefaultGasPrice:  "0.025",
		MinBinaryVersion: "v15.0.0",
	},
}

// Registry is an ordered, immutable-after-load table of chains keyed by Option.Key.
type Registry struct {
	order []string
	byKey map[string]Option
}

// NewRegistry builds a registry from opts. Keys must be unique.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Option, len(opts))}
	if err := r.Add(opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// Builtin returns a registry holding the chains shipped with the console.
func Builtin() *Registry {
	r, err := NewRegistry(builtin...)
	if err != nil {
		panic(err)
	}
	return r
}

// Add appends chains to the registry after validating them.
func (r *Registry) Add(opts ...Option) error {
	for _, o := range opts {
		if err := validate(o); err != nil {
			return err
		}
		if _, exists := r.byKey[o.Key]; exists {
			return fmt.Errorf("duplicate chain key %q", o.Key)
		}
		r.byKey[o.Key] = o
		r.order = append(r.order, o.Key)
	}
	return nil
}

func validate(o Option) error {
	switch {
	case strings.TrimSpace(o.Key) == "":
		return fmt.Errorf("chain entry is missing key")
	case o.ChainID == "":
		return fmt.Errorf("chain %q is missing chain_id", o.Key)
	case o.ValoperPrefix == "":
		return fmt.Errorf("chain %q is missing valoper_prefix", o.Key)
	case o.FeeDenom == "":
		return fmt.Errorf("chain %q is missing fee_denom", o.Key)
	}
	return nil
}

// Lookup returns the chain registered under key.
func (r *Registry) Lookup(key string) (Option, error) {
	o, ok := r.byKey[key]
	if !ok {
		return Option{}, exitcodes.Newf(exitcodes.KindUnknownChain, "unknown chain %q (known: %s)", key, strings.Join(r.order, ", "))
	}
	return o, nil
}

// Keys returns chain keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns chains in registration order.
func (r *Registry) All() []Option {
	out := make([]Option, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKey[k])
	}
	return out
}

// Default is the first registered chain.
func (r *Registry) Default() Option {
	if len(r.order) == 0 {
		return Option{}
	}
	return r.byKey[r.order[0]]
}

// chainsFile is the on-disk shape of an extra chains file.
type chainsFile struct {
	Chains []Option `yaml:"chains"`
}

// LoadFile reads extra chain definitions from a YAML file:
//
//	chains:
//	  - key: osmosis-1
//	    chain_id: osmosis-1
//	    ...
func LoadFile(path string) ([]Option, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f chainsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range f.Chains {
		if f.Chains[i].AddressPrefix == "" {
			f.Chains[i].AddressPrefix = strings.TrimSuffix(f.Chains[i].ValoperPrefix, "valoper")
		}
		if f.Chains[i].Label == "" {
			f.Chains[i].Label = f.Chains[i].Key
		}
	}
	return f.Chains, nil
}

// IsValidatorOperatorAddress reports whether address looks like a validator
// operator address of c. This is a textual prefix check only; the bech32
// checksum is not verified.
func IsValidatorOperatorAddress(address string, c Option) bool {
	if c.ValoperPrefix == "" {
		return false
	}
	return strings.HasPrefix(address, c.ValoperPrefix+"1")
}

// OperatorAccount converts a validator operator address into the account
// address controlling it (seivaloper1... -> sei1...).
func OperatorAccount(valoper string, c Option) (string, error) {
	hrp, data, err := bech32.Decode(valoper)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", valoper, err)
	}
	if hrp != c.ValoperPrefix {
		return "", fmt.Errorf("address prefix %q does not belong to %s", hrp, c.Key)
	}
	return bech32.Encode(c.AddressPrefix, data)
}
