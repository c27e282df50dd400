package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNotFinite = errors.New("value is not a finite number")

// ParseAmount parses a decimal amount. An empty string yields def; NaN and
// infinities are rejected.
func ParseAmount(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !IsFinite(v) {
		return 0, ErrNotFinite
	}
	return v, nil
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds the exact binary value of v to places decimal places, ties to
// even. 0.0000005 is stored just below the tie and rounds to 0 at six places.
// Non-finite values are returned unchanged.
func Round(v float64, places int32) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', int(places), 64)).InexactFloat64()
}
