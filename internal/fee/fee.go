// Package fee holds the gas and fee arithmetic for unjail transactions.
package fee

import (
	"fmt"
	stdmath "math"
	"math/big"
	"strconv"
	"strings"

	"cosmossdk.io/math"

	"github.com/pushchain/unjail-console/internal/amino"
)

const (
	DefaultGasLimit uint64 = 100000
	DefaultGasPrice        = "0.02"
)

var defaultGasPrice = math.LegacyMustNewDecFromStr(DefaultGasPrice)

// ProposeGasLimit adds a 20% margin to a simulated estimate, rounding up:
// ceil(1.2 * estimated). The result saturates at MaxUint64.
func ProposeGasLimit(estimated uint64) uint64 {
	if estimated > stdmath.MaxUint64/12 {
		p := math.NewIntFromUint64(estimated).MulRaw(12).AddRaw(9).QuoRaw(10)
		if !p.IsUint64() {
			return stdmath.MaxUint64
		}
		return p.Uint64()
	}
	return (estimated*12 + 9) / 10
}

// LookupGasLimit reads a gas limit from operator input. Integers are taken as
// is and finite non-negative decimals are floored. ok is false for anything
// else.
func LookupGasLimit(s string) (v uint64, ok bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || stdmath.IsNaN(f) || stdmath.IsInf(f, 0) || f < 0 || f >= stdmath.MaxUint64 {
		return 0, false
	}
	return uint64(stdmath.Floor(f)), true
}

// ParseGasLimit is LookupGasLimit with DefaultGasLimit for invalid input.
func ParseGasLimit(s string) uint64 {
	if v, ok := LookupGasLimit(s); ok {
		return v
	}
	return DefaultGasLimit
}

// LookupGasPrice reads a non-negative decimal gas price. Plain decimals
// (".5", "5."), and exponent forms ("1e-3") are accepted; digits past the
// 18th decimal place are rounded. ok is false for malformed or negative
// input.
func LookupGasPrice(s string) (d math.LegacyDec, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "/xXoObB_") {
		return math.LegacyDec{}, false
	}
	r, valid := new(big.Rat).SetString(s)
	if !valid || r.Sign() < 0 {
		return math.LegacyDec{}, false
	}
	d, err := math.LegacyNewDecFromStr(r.FloatString(math.LegacyPrecision))
	if err != nil {
		return math.LegacyDec{}, false
	}
	return d, true
}

// ParseGasPrice is LookupGasPrice with DefaultGasPrice for invalid input.
func ParseGasPrice(s string) math.LegacyDec {
	if d, ok := LookupGasPrice(s); ok {
		return d
	}
	return defaultGasPrice
}

// Fee is the fee attached to one transaction.
type Fee struct {
	GasLimit uint64
	GasPrice math.LegacyDec
	Denom    string
}

// New coerces raw operator input into a Fee.
func New(gasLimit, gasPrice, denom string) Fee {
	return Fee{
		GasLimit: ParseGasLimit(gasLimit),
		GasPrice: ParseGasPrice(gasPrice),
		Denom:    denom,
	}
}

// Amount is ceil(GasLimit * GasPrice).
func (f Fee) Amount() math.Int {
	price := f.GasPrice
	if price.IsNil() {
		price = defaultGasPrice
	}
	return price.MulInt(math.NewIntFromUint64(f.GasLimit)).Ceil().TruncateInt()
}

// Coins returns the fee as a coin list for the transaction's auth info.
func (f Fee) Coins() []amino.Coin {
	return []amino.Coin{{Denom: f.Denom, Amount: f.Amount().String()}}
}

func (f Fee) String() string {
	return fmt.Sprintf("%s%s (gas %d @ %s)", f.Amount(), f.Denom, f.GasLimit, f.GasPrice)
}
