package text

import "strings"

// Digits strips every non-digit rune. Telephone, CNPJ and CEP rules are
// all defined over the digits-only form of the raw input.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitLen counts digit runes without allocating.
func DigitLen(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
