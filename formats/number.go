package formats

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// maxMagnitude bounds the decimal exponent materialized by parseDecimal.
// Every format range lies well inside (10^-maxMagnitude, 10^maxMagnitude), so
// clamping larger or smaller magnitudes keeps range and integrality verdicts.
const maxMagnitude = 400

var (
	hugeRat = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(maxMagnitude+1), nil))
	tinyRat = new(big.Rat).Inv(hugeRat)
)

// Rat converts v to an exact rational. It accepts Go integer and float
// types, json.Number, decimal strings, *big.Int, *big.Rat and *big.Float.
// NaN, infinities and anything else are reported as not a number.
func Rat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case int:
		return big.NewRat(int64(n), 1), true
	case int8:
		return big.NewRat(int64(n), 1), true
	case int16:
		return big.NewRat(int64(n), 1), true
	case int32:
		return big.NewRat(int64(n), 1), true
	case int64:
		return big.NewRat(n, 1), true
	case uint:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Rat).SetUint64(n), true
	case float32:
		return floatRat(float64(n))
	case float64:
		return floatRat(n)
	case json.Number:
		return parseDecimal(string(n))
	case string:
		return parseDecimal(n)
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return new(big.Rat).SetInt(n), true
	case *big.Rat:
		if n == nil {
			return nil, false
		}
		return new(big.Rat).Set(n), true
	case *big.Float:
		if n == nil || n.IsInf() {
			return nil, false
		}
		r, _ := n.Rat(nil)
		return r, true
	}
	return nil, false
}

func floatRat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}

// parseDecimal reads a decimal literal: optional sign, digits with an
// optional fraction, optional exponent. At least one digit is required.
func parseDecimal(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	mant, expPart, hasExp := strings.Cut(strings.ToLower(s), "e")
	intPart, fracPart, _ := strings.Cut(mant, ".")
	if intPart == "" && fracPart == "" {
		return nil, false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil, false
	}

	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		if hasExp && !validExponent(expPart) {
			return nil, false
		}
		return new(big.Rat), true
	}

	exp := -len(fracPart)
	if hasExp {
		if !validExponent(expPart) {
			return nil, false
		}
		e, err := strconv.Atoi(expPart)
		if err != nil || e > math.MaxInt32 || e < math.MinInt32 {
			// The exponent alone is out of any materializable range.
			return clamp(neg, !strings.HasPrefix(expPart, "-")), true
		}
		exp += e
	}

	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	digits = trimmed

	switch magnitude := exp + len(digits); {
	case magnitude > maxMagnitude:
		return clamp(neg, true), true
	case magnitude < -maxMagnitude:
		return clamp(neg, false), true
	}

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	r := new(big.Rat).SetInt(n)
	if exp != 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(exp))), nil)
		if exp > 0 {
			r.Mul(r, new(big.Rat).SetInt(scale))
		} else {
			r.Quo(r, new(big.Rat).SetInt(scale))
		}
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

// clamp stands in for a value whose magnitude is beyond maxMagnitude (huge)
// or below its reciprocal (tiny, non-zero, never an integer).
func clamp(neg, huge bool) *big.Rat {
	r := new(big.Rat).Set(tinyRat)
	if huge {
		r.Set(hugeRat)
	}
	if neg {
		r.Neg(r)
	}
	return r
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validExponent(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return s != "" && allDigits(s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
