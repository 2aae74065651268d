package ui

import (
	"strings"

	"github.com/pushchain/unjail-console/internal/exitcodes"
)

// ErrorMessage represents a structured, actionable error to present to users.
type ErrorMessage struct {
	Problem string   // one-line problem statement
	Causes  []string // possible causes
	Actions []string // actionable steps to resolve
	Hints   []string // optional hints (e.g., commands to try)
}

// FromError builds an ErrorMessage for err, adding causes and next steps for
// classified failures.
func FromError(err error) ErrorMessage {
	if err == nil {
		return ErrorMessage{}
	}
	e := ErrorMessage{Problem: err.Error()}
	switch exitcodes.KindOf(err) {
	case exitcodes.KindInvalidInput:
		e.Actions = []string{"Check the flag values and try again"}
	case exitcodes.KindUnknownChain:
		e.Actions = []string{"List supported chains: unjail-console chains"}
		e.Hints = []string{"Extra chains can be defined in the file named by chains_file"}
	case exitcodes.KindWalletUnavailable:
		e.Causes = []string{"Chain binary is not installed or not on PATH", "Keyring backend or home directory is wrong"}
		e.Actions = []string{"Pass --bin with the path to the chain binary", "Check --home and --keyring-backend"}
	case exitcodes.KindSignerUnavailable:
		e.Causes = []string{"The keyring cannot produce a signer for this chain"}
		e.Actions = []string{"Inspect signer capabilities: unjail-console signers"}
	case exitcodes.KindUnsupportedSigner:
		e.Causes = []string{"The signer cannot list its accounts"}
		e.Actions = []string{"Try another --sign-mode"}
	case exitcodes.KindNoAccounts:
		e.Causes = []string{"The keyring holds no keys"}
		e.Actions = []string{"Import the operator key into the keyring first"}
	case exitcodes.KindClientConnect:
		e.Causes = []string{"RPC endpoint unreachable", "RPC endpoint serves a different chain"}
		e.Actions = []string{"Check --rpc, or drop it to use the chain default"}
	case exitcodes.KindNotConnected:
		e.Actions = []string{"Connect a wallet first"}
	case exitcodes.KindInvalidValidatorAddress:
		e.Causes = []string{"The address is not a validator operator address of the selected chain"}
		e.Actions = []string{"Use the valoper address shown by your validator"}
	case exitcodes.KindSimulate:
		e.Causes = []string{"Validator is not jailed", "Jail period has not elapsed", "Signer is not the operator"}
	case exitcodes.KindBroadcast:
		e.Causes = []string{"Signing was refused", "RPC endpoint rejected the transaction"}
		e.Actions = []string{"Simulate first to check the transaction"}
	case exitcodes.KindBusy:
		e.Actions = []string{"Wait for the running action to finish"}
	}
	return e
}

// Format renders the error using the color theme. It does not include ANSI
// codes when colors are disabled (NO_COLOR or dumb terminal).
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	b.WriteString(c.StatusIcon("error"))
	b.WriteString(" ")
	b.WriteString(c.Header("Error"))
	b.WriteString("\n")
	if e.Problem != "" {
		b.WriteString("  ")
		b.WriteString(c.Label("Problem"))
		b.WriteString(": ")
		b.WriteString(e.Problem)
		b.WriteString("\n")
	}
	writeList(&b, c, "Possible causes", "   • ", e.Causes, false)
	writeList(&b, c, "Try", "   → ", e.Actions, false)
	writeList(&b, c, "Hints", "   · ", e.Hints, true)
	return b.String()
}

func writeList(b *strings.Builder, c *ColorConfig, title, bullet string, items []string, dim bool) {
	if len(items) == 0 {
		return
	}
	b.WriteString("  ")
	b.WriteString(c.Label(title))
	b.WriteString(":\n")
	for _, it := range items {
		b.WriteString(bullet)
		if dim {
			it = c.Description(it)
		}
		b.WriteString(it)
		b.WriteString("\n")
	}
}
