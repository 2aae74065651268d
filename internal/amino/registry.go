package amino

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type decodeFunc func(json.RawMessage) (Msg, error)

// Registry maps type URLs to message types for the proto JSON encoding used
// in unsigned transactions.
type Registry struct {
	types map[string]decodeFunc
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]decodeFunc)}
}

// Register adds message type M to r.
func Register[M Msg](r *Registry) {
	var zero M
	r.types[zero.TypeURL()] = func(raw json.RawMessage) (Msg, error) {
		var m M
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// DefaultRegistry holds the bank, staking and distribution messages.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	Register[MsgSend](r)
	Register[MsgDelegate](r)
	Register[MsgWithdrawDelegatorReward](r)
	return r
}

// WithUnjail registers MsgUnjail and returns r.
func (r *Registry) WithUnjail() *Registry {
	Register[MsgUnjail](r)
	return r
}

func (r *Registry) Has(typeURL string) bool {
	_, ok := r.types[typeURL]
	return ok
}

func (r *Registry) TypeURLs() []string {
	out := make([]string, 0, len(r.types))
	for k := range r.types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EncodeAny renders m as a proto JSON Any: its fields plus "@type".
func (r *Registry) EncodeAny(m Msg) (json.RawMessage, error) {
	if !r.Has(m.TypeURL()) {
		return nil, fmt.Errorf("unregistered message type %s", m.TypeURL())
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	typ, _ := json.Marshal(m.TypeURL())
	fields["@type"] = typ
	return json.Marshal(fields)
}

// DecodeAny parses a proto JSON Any produced by EncodeAny.
func (r *Registry) DecodeAny(raw json.RawMessage) (Msg, error) {
	var head struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	dec, ok := r.types[head.Type]
	if !ok {
		return nil, fmt.Errorf("unregistered message type %q", head.Type)
	}
	return dec(raw)
}

type txBody struct {
	Messages                    []json.RawMessage `json:"messages"`
	Memo                        string            `json:"memo"`
	TimeoutHeight               string            `json:"timeout_height"`
	ExtensionOptions            []json.RawMessage `json:"extension_options"`
	NonCriticalExtensionOptions []json.RawMessage `json:"non_critical_extension_options"`
}

type txFee struct {
	Amount   []Coin `json:"amount"`
	GasLimit string `json:"gas_limit"`
	Payer    string `json:"payer"`
	Granter  string `json:"granter"`
}

type authInfo struct {
	SignerInfos []json.RawMessage `json:"signer_infos"`
	Fee         txFee             `json:"fee"`
}

type unsignedTx struct {
	Body       txBody   `json:"body"`
	AuthInfo   authInfo `json:"auth_info"`
	Signatures []string `json:"signatures"`
}

// UnsignedTx encodes msgs into the proto JSON transaction document accepted by
// `<bin> tx sign`.
func (r *Registry) UnsignedTx(msgs []Msg, memo string, fee []Coin, gasLimit uint64) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("transaction has no messages")
	}
	anys := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		a, err := r.EncodeAny(m)
		if err != nil {
			return nil, err
		}
		anys = append(anys, a)
	}
	if fee == nil {
		fee = []Coin{}
	}
	tx := unsignedTx{
		Body: txBody{
			Messages:                    anys,
			Memo:                        memo,
			TimeoutHeight:               "0",
			ExtensionOptions:            []json.RawMessage{},
			NonCriticalExtensionOptions: []json.RawMessage{},
		},
		AuthInfo: authInfo{
			SignerInfos: []json.RawMessage{},
			Fee: txFee{
				Amount:   fee,
				GasLimit: strconv.FormatUint(gasLimit, 10),
			},
		},
		Signatures: []string{},
	}
	return json.Marshal(tx)
}
