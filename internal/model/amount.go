package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amounts are stored as integer cents and edited as decimal strings
// ("3", "3.5", "3.50"). Parsing is strict: no currency symbols, no
// thousands separators, at most two fraction digits.

var errBadAmount = errors.New("not a valid amount")

// maxUnits keeps units*100+99 inside int64.
const maxUnits = (math.MaxInt64 - 99) / 100

// ParseAmount converts a decimal string into cents.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, errBadAmount
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		// ".50" is fine.
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxUnits {
		return 0, errBadAmount
	}
	cents := units * 100
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, errBadAmount
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, errBadAmount
		}
		if len(frac) == 1 {
			f *= 10
		}
		cents += f
	}
	return cents, nil
}

// FormatAmount renders cents as a plain decimal string ("300" -> "3.00").
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
