package amino

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnregisteredType is returned when a message has no legacy converter.
// Legacy-mode signers cannot sign such messages.
var ErrUnregisteredType = errors.New("message type has no legacy amino converter")

// LegacyMsg is the amino JSON form of a message: {"type": ..., "value": ...}.
type LegacyMsg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Converter translates one message type to and from its legacy form.
type Converter struct {
	AminoType string
	ToAmino   func(Msg) (any, error)
	FromAmino func(json.RawMessage) (Msg, error)
}

// NewConverter builds a Converter for message type M whose legacy value has
// shape A.
func NewConverter[M Msg, A any](aminoType string, to func(M) A, from func(A) M) Converter {
	return Converter{
		AminoType: aminoType,
		ToAmino: func(m Msg) (any, error) {
			typed, ok := m.(M)
			if !ok {
				return nil, fmt.Errorf("converter %s: unexpected message %T", aminoType, m)
			}
			return to(typed), nil
		},
		FromAmino: func(raw json.RawMessage) (Msg, error) {
			var a A
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("decode %s: %w", aminoType, err)
			}
			return from(a), nil
		},
	}
}

// Converters is the legacy converter table keyed by type URL.
type Converters struct {
	byURL   map[string]Converter
	byAmino map[string]string
}

func NewConverters() *Converters {
	return &Converters{
		byURL:   make(map[string]Converter),
		byAmino: make(map[string]string),
	}
}

// Register adds a converter for typeURL. Both the type URL and the amino type
// name must be unused.
func (c *Converters) Register(typeURL string, conv Converter) error {
	if conv.AminoType == "" || conv.ToAmino == nil || conv.FromAmino == nil {
		return fmt.Errorf("incomplete converter for %s", typeURL)
	}
	if _, ok := c.byURL[typeURL]; ok {
		return fmt.Errorf("converter for %s already registered", typeURL)
	}
	if prev, ok := c.byAmino[conv.AminoType]; ok {
		return fmt.Errorf("amino type %s already used by %s", conv.AminoType, prev)
	}
	c.byURL[typeURL] = conv
	c.byAmino[conv.AminoType] = typeURL
	return nil
}

func (c *Converters) mustRegister(typeURL string, conv Converter) {
	if err := c.Register(typeURL, conv); err != nil {
		panic(err)
	}
}

// Has reports whether typeURL has a converter.
func (c *Converters) Has(typeURL string) bool {
	_, ok := c.byURL[typeURL]
	return ok
}

// TypeURLs lists registered type URLs, sorted.
func (c *Converters) TypeURLs() []string {
	out := make([]string, 0, len(c.byURL))
	for k := range c.byURL {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ToLegacy converts m to its amino JSON record.
func (c *Converters) ToLegacy(m Msg) (LegacyMsg, error) {
	conv, ok := c.byURL[m.TypeURL()]
	if !ok {
		return LegacyMsg{}, fmt.Errorf("%w: %s", ErrUnregisteredType, m.TypeURL())
	}
	v, err := conv.ToAmino(m)
	if err != nil {
		return LegacyMsg{}, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return LegacyMsg{}, fmt.Errorf("encode %s: %w", conv.AminoType, err)
	}
	return LegacyMsg{Type: conv.AminoType, Value: raw}, nil
}

// FromLegacy converts an amino JSON record back to its message.
func (c *Converters) FromLegacy(l LegacyMsg) (Msg, error) {
	url, ok := c.byAmino[l.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, l.Type)
	}
	return c.byURL[url].FromAmino(l.Value)
}

// legacyUnjail is the amino value of MsgUnjail. The field is named "address"
// in the legacy encoding.
type legacyUnjail struct {
	Address string `json:"address"`
}

// UnjailConverter maps MsgUnjail to cosmos-sdk/MsgUnjail.
func UnjailConverter() Converter {
	return NewConverter("cosmos-sdk/MsgUnjail",
		func(m MsgUnjail) legacyUnjail { return legacyUnjail{Address: m.ValidatorAddr} },
		func(a legacyUnjail) MsgUnjail { return MsgUnjail{ValidatorAddr: a.Address} },
	)
}

// DefaultConverters holds the converters a stock chain client ships with:
// bank send, staking delegate and distribution withdraw. MsgUnjail is not
// among them.
func DefaultConverters() *Converters {
	c := NewConverters()
	c.mustRegister(TypeURLSend, NewConverter("cosmos-sdk/MsgSend",
		func(m MsgSend) MsgSend { return m },
		func(a MsgSend) MsgSend { return a },
	))
	c.mustRegister(TypeURLDelegate, NewConverter("cosmos-sdk/MsgDelegate",
		func(m MsgDelegate) MsgDelegate { return m },
		func(a MsgDelegate) MsgDelegate { return a },
	))
	c.mustRegister(TypeURLWithdrawReward, NewConverter("cosmos-sdk/MsgWithdrawDelegationReward",
		func(m MsgWithdrawDelegatorReward) MsgWithdrawDelegatorReward { return m },
		func(a MsgWithdrawDelegatorReward) MsgWithdrawDelegatorReward { return a },
	))
	return c
}

// WithUnjail registers the unjail converter and returns c.
func (c *Converters) WithUnjail() *Converters {
	if !c.Has(TypeURLUnjail) {
		c.mustRegister(TypeURLUnjail, UnjailConverter())
	}
	return c
}
