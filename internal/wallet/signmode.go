package wallet

import (
	"strings"

	"github.com/pushchain/unjail-console/internal/exitcodes"
)

// SignMode selects how the wallet should produce signatures.
type SignMode string

const (
	SignModeAmino  SignMode = "amino"
	SignModeDirect SignMode = "direct"
	SignModeAuto   SignMode = "auto"
)

// SignModes lists the selectable modes in display order.
func SignModes() []SignMode {
	return []SignMode{SignModeAmino, SignModeDirect, SignModeAuto}
}

// ParseSignMode reads a mode name, case-insensitively.
func ParseSignMode(s string) (SignMode, error) {
	switch m := SignMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SignModeAmino, SignModeDirect, SignModeAuto:
		return m, nil
	}
	return "", exitcodes.Newf(exitcodes.KindInvalidInput, "unknown sign mode %q (want amino, direct or auto)", s)
}

func (m SignMode) String() string { return string(m) }

// Values of the chain binary's --sign-mode flag.
const (
	FlagSignDirect = "direct"
	FlagSignAmino  = "amino-json"
)
