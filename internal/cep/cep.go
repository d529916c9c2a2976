package cep

import (
	"context"

	"clientregistry/pkg/text"
)

// Result is the canonical address fragment returned by a postal lookup.
type Result struct {
	Street   string `json:"street"`
	District string `json:"district"`
	Locality string `json:"locality"`
	Region   string `json:"region"`
}

// Lookup resolves an 8-digit postal code to an address fragment. Misses
// are reported as sentinel.ErrNotFound; transport failures are wrapped
// around sentinel.ErrUnavailable. Callers treat every failure mode as
// "no autofill".
type Lookup interface {
	Lookup(ctx context.Context, code string) (Result, error)
}

// Normalize strips formatting so "01310-100" and "01310100" compare equal.
func Normalize(code string) string {
	return text.Digits(code)
}

// Valid reports whether the digits-only form of code is exactly 8 digits.
func Valid(code string) bool {
	return len(text.Digits(code)) == 8
}
