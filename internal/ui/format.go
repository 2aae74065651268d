package ui

import (
	"fmt"
	"strings"
)

// FormatNumber formats an integer with thousands separators
// Example: 1234567 -> "1,234,567"
func FormatNumber(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ShortAddress abbreviates long bech32 addresses for narrow displays:
// sei1abcdefghij...wxyz.
func ShortAddress(addr string, keep int) string {
	if keep <= 0 || len(addr) <= 2*keep+3 {
		return addr
	}
	return addr[:keep] + "..." + addr[len(addr)-keep:]
}
