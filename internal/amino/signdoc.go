package amino

import (
	"encoding/json"
	"strconv"
)

// StdFee is the fee as it appears in a legacy sign document.
type StdFee struct {
	Amount []Coin `json:"amount"`
	Gas    string `json:"gas"`
}

// StdSignDoc is the document a legacy-mode signer signs.
type StdSignDoc struct {
	AccountNumber string      `json:"account_number"`
	ChainID       string      `json:"chain_id"`
	Fee           StdFee      `json:"fee"`
	Memo          string      `json:"memo"`
	Msgs          []LegacyMsg `json:"msgs"`
	Sequence      string      `json:"sequence"`
}

// SignDoc converts msgs through c and assembles the legacy sign document.
// It fails with ErrUnregisteredType when any message lacks a converter.
func (c *Converters) SignDoc(chainID string, accountNumber, sequence uint64, fee []Coin, gasLimit uint64, memo string, msgs []Msg) (StdSignDoc, error) {
	legacy := make([]LegacyMsg, 0, len(msgs))
	for _, m := range msgs {
		l, err := c.ToLegacy(m)
		if err != nil {
			return StdSignDoc{}, err
		}
		legacy = append(legacy, l)
	}
	if fee == nil {
		fee = []Coin{}
	}
	return StdSignDoc{
		AccountNumber: strconv.FormatUint(accountNumber, 10),
		ChainID:       chainID,
		Fee:           StdFee{Amount: fee, Gas: strconv.FormatUint(gasLimit, 10)},
		Memo:          memo,
		Msgs:          legacy,
		Sequence:      strconv.FormatUint(sequence, 10),
	}, nil
}

// Bytes returns the canonical sign bytes: compact JSON with object keys
// sorted at every level.
func (d StdSignDoc) Bytes() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
