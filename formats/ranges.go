package formats

import (
	"math"
	"math/big"
)

// Format names.
const (
	NameInt32  = "int32"
	NameInt64  = "int64"
	NameFloat  = "float"
	NameDouble = "double"
)

// Range is an inclusive [min, max] interval with exact bounds.
type Range struct {
	min, max *big.Rat
}

func newRange(lo, hi *big.Rat) Range {
	return Range{min: lo, max: hi}
}

// Min returns a copy of the lower bound.
func (r Range) Min() *big.Rat {
	return new(big.Rat).Set(r.min)
}

// Max returns a copy of the upper bound.
func (r Range) Max() *big.Rat {
	return new(big.Rat).Set(r.max)
}

// Contains reports whether min <= x <= max.
func (r Range) Contains(x *big.Rat) bool {
	return x != nil && x.Cmp(r.min) >= 0 && x.Cmp(r.max) <= 0
}

// String renders the range with integer bounds in decimal and the rest in
// shortest float notation.
func (r Range) String() string {
	return "[" + ratString(r.min) + ", " + ratString(r.max) + "]"
}

func ratString(x *big.Rat) string {
	if x.IsInt() && x.Num().BitLen() <= 64 {
		return x.Num().String()
	}
	f, _ := x.Float64()
	return big.NewFloat(f).Text('g', -1)
}

var (
	int32Range = newRange(big.NewRat(math.MinInt32, 1), big.NewRat(math.MaxInt32, 1))
	int64Range = newRange(big.NewRat(math.MinInt64, 1), big.NewRat(math.MaxInt64, 1))

	// math.MaxFloat32 and math.MaxFloat64 are exact in float64, so SetFloat64
	// yields the true bounds (2 − 2⁻²³)·2¹²⁷ and (2 − 2⁻⁵²)·2¹⁰²³.
	floatRange  = newRange(new(big.Rat).SetFloat64(-math.MaxFloat32), new(big.Rat).SetFloat64(math.MaxFloat32))
	doubleRange = newRange(new(big.Rat).SetFloat64(-math.MaxFloat64), new(big.Rat).SetFloat64(math.MaxFloat64))
)

// Lookup returns the range of a numeric format.
func Lookup(name string) (Range, bool) {
	switch name {
	case NameInt32:
		return int32Range, true
	case NameInt64:
		return int64Range, true
	case NameFloat:
		return floatRange, true
	case NameDouble:
		return doubleRange, true
	}
	return Range{}, false
}
