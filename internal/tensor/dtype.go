// Package tensor provides the immutable tensor model used by the WebNN reference evaluator.
package tensor

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// DataType represents the element type of an operand, named as in WebNN's MLOperandDataType.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float16
	Int32
	Uint32
	Int64
	Uint64
	Int8
	Uint8
)

// ParseDataType maps a WebNN data type name (e.g. "float16") to a DataType.
func ParseDataType(name string) (DataType, error) {
	switch name {
	case "float32":
		return Float32, nil
	case "float16":
		return Float16, nil
	case "int32":
		return Int32, nil
	case "uint32":
		return Uint32, nil
	case "int64":
		return Int64, nil
	case "uint64":
		return Uint64, nil
	case "int8":
		return Int8, nil
	case "uint8":
		return Uint8, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDataType, name)
	}
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32, Uint32:
		return 4
	case Int64, Uint64:
		return 8
	case Float16:
		return 2
	case Int8, Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the data type is an IEEE-754 floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float16
}

// String returns the WebNN name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// Round returns the value of dt nearest to v, as a float64.
//
// Float types round to nearest-even. Integer types truncate and wrap like a
// JavaScript typed array store.
func (dt DataType) Round(v float64) float64 {
	switch dt {
	case Float32:
		return float64(float32(v))
	case Float16:
		return float64(float16.Fromfloat32(float32RoundOdd(v)).Float32())
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	i := int64(math.Trunc(v))
	switch dt {
	case Int32:
		return float64(int32(i))
	case Uint32:
		return float64(uint32(i))
	case Int64:
		return float64(i)
	case Uint64:
		return float64(uint64(i))
	case Int8:
		return float64(int8(i))
	case Uint8:
		return float64(uint8(i))
	default:
		panic("unknown data type")
	}
}

// float32RoundOdd narrows v to float32 by truncating toward zero and setting
// the last mantissa bit when the result is inexact. A following float32 to
// float16 conversion then rounds v as if directly.
func float32RoundOdd(v float64) float32 {
	f := float32(v)
	if math.IsNaN(v) || math.IsInf(v, 0) || float64(f) == v {
		return f
	}
	if math.Abs(float64(f)) > math.Abs(v) {
		f = math.Nextafter32(f, 0)
	}
	return math.Float32frombits(math.Float32bits(f) | 1)
}
