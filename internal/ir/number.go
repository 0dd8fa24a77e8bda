package ir

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f exactly as ECMAScript's Number.prototype.toString
// does for radix 10: shortest round-trip digits, fixed notation for
// exponents in [-7, 21), exponent notation ("1e+21", "1.5e-7") otherwise.
//
// This is the string a number coerces to when compared with a string
// literal, and the number form used by canonical JSON (RFC 8785 adopts the
// same algorithm).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // covers -0
	case f < 0:
		return "-" + FormatNumber(-f)
	}

	digits, n := decimalDigits(f)
	k := len(digits)

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	e := n - 1
	sign := "+"
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}

// decimalDigits returns the shortest digit string s and exponent n such that
// f == 0.s × 10^n. f must be finite and positive.
func decimalDigits(f float64) (string, int) {
	// "d.ddddde±XX"
	repr := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(repr, "e")
	e, _ := strconv.Atoi(exp)
	digits := strings.Replace(mantissa, ".", "", 1)
	return digits, e + 1
}
