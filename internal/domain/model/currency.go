package model

import "strings"

// Currency is an upper-cased currency code. Codes are not checked against
// ISO-4217; any non-empty string is a valid code.
type Currency string

// NormalizeCurrency trims and upper-cases a raw currency code.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

func (c Currency) IsEmpty() bool {
	return c == ""
}

func (c Currency) String() string {
	return string(c)
}
