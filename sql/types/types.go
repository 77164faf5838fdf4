// Copyright 2024 GridSQL, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types defines the concrete SQL type system and the numeric
// coercion policy used by the validator.
package types

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gridsql/gridsql/sql"
)

type typeKind byte

const (
	kindNull typeKind = iota
	kindBoolean
	kindInt32
	kindInt64
	kindFloat32
	kindFloat64
	kindDecimal
	kindText
)

// Built-in types. Types are singletons and compared by identity of kind.
var (
	// Null is the type of the NULL literal before coercion.
	Null sql.Type = baseType{kindNull, "NULL"}
	// Boolean is a true/false type.
	Boolean sql.Type = baseType{kindBoolean, "BOOLEAN"}
	// Int32 is a 32-bit signed integer type.
	Int32 sql.Type = baseType{kindInt32, "INT"}
	// Int64 is a 64-bit signed integer type.
	Int64 sql.Type = baseType{kindInt64, "BIGINT"}
	// Float32 is a 32-bit floating point type.
	Float32 sql.Type = baseType{kindFloat32, "REAL"}
	// Float64 is a 64-bit floating point type.
	Float64 sql.Type = baseType{kindFloat64, "DOUBLE"}
	// Decimal is an arbitrary-precision exact numeric type.
	Decimal sql.Type = baseType{kindDecimal, "DECIMAL"}
	// Text is a variable-length string type.
	Text sql.Type = baseType{kindText, "VARCHAR"}
)

type baseType struct {
	kind typeKind
	name string
}

func (t baseType) String() string { return t.name }

func (t baseType) Equals(other sql.Type) bool {
	o, ok := other.(baseType)
	return ok && o.kind == t.kind
}

func (t baseType) Zero() interface{} {
	switch t.kind {
	case kindBoolean:
		return false
	case kindInt32:
		return int32(0)
	case kindInt64:
		return int64(0)
	case kindFloat32:
		return float32(0)
	case kindFloat64:
		return float64(0)
	case kindDecimal:
		return decimal.Zero
	case kindText:
		return ""
	default:
		return nil
	}
}

// Convert coerces v to this type's canonical Go representation.
func (t baseType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch t.kind {
	case kindNull:
		return nil, nil
	case kindBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		}
	case kindInt32:
		if i, err := toInt64(v); err == nil {
			return int32(i), nil
		}
	case kindInt64:
		if i, err := toInt64(v); err == nil {
			return i, nil
		}
	case kindFloat32:
		if f, err := toFloat64(v); err == nil {
			return float32(f), nil
		}
	case kindFloat64:
		if f, err := toFloat64(v); err == nil {
			return f, nil
		}
	case kindDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case string:
			return decimal.NewFromString(x)
		case int32:
			return decimal.NewFromInt32(x), nil
		case int64:
			return decimal.NewFromInt(x), nil
		case float64:
			return decimal.NewFromFloat(x), nil
		}
	case kindText:
		switch x := v.(type) {
		case string:
			return x, nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) cannot be converted to %s", v, v, t.name)
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

func toFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("not a float: %T", v)
}

// IsNull reports whether t is the NULL literal type.
func IsNull(t sql.Type) bool { return kindOf(t) == kindNull }

// IsNumber reports whether t is a numeric type.
func IsNumber(t sql.Type) bool {
	switch kindOf(t) {
	case kindInt32, kindInt64, kindFloat32, kindFloat64, kindDecimal:
		return true
	}
	return false
}

// IsInteger reports whether t is an integer type.
func IsInteger(t sql.Type) bool {
	k := kindOf(t)
	return k == kindInt32 || k == kindInt64
}

// IsFloat reports whether t is a floating point type.
func IsFloat(t sql.Type) bool {
	k := kindOf(t)
	return k == kindFloat32 || k == kindFloat64
}

// IsDecimal reports whether t is the exact decimal type.
func IsDecimal(t sql.Type) bool { return kindOf(t) == kindDecimal }

// IsText reports whether t is a string type.
func IsText(t sql.Type) bool { return kindOf(t) == kindText }

// IsBoolean reports whether t is the boolean type.
func IsBoolean(t sql.Type) bool { return kindOf(t) == kindBoolean }

func kindOf(t sql.Type) typeKind {
	if b, ok := t.(baseType); ok {
		return b.kind
	}
	return kindNull
}

// PromoteNumeric returns the result type of a mixed arithmetic operation
// over two numeric operands. The policy is total over numeric pairs and
// fixed:
//
//   - two integers widen to the wider integer
//   - an integer with a float promotes to Float64
//   - two floats promote to the wider float
//   - anything with Decimal promotes to Decimal
//   - NULL with a numeric takes the numeric type
//
// The second return value is false when either operand is non-numeric;
// the caller reports the validation error with its own context.
func PromoteNumeric(a, b sql.Type) (sql.Type, bool) {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kindNull {
		ka = kb
	}
	if kb == kindNull {
		kb = ka
	}
	if ka == kindNull {
		return Null, true
	}
	if !isNumericKind(ka) || !isNumericKind(kb) {
		return nil, false
	}
	if ka == kindDecimal || kb == kindDecimal {
		return Decimal, true
	}
	if isFloatKind(ka) || isFloatKind(kb) {
		if ka == kindFloat64 || kb == kindFloat64 || isIntKind(ka) || isIntKind(kb) {
			return Float64, true
		}
		return Float32, true
	}
	if ka == kindInt64 || kb == kindInt64 {
		return Int64, true
	}
	return Int32, true
}

func isNumericKind(k typeKind) bool {
	return k == kindInt32 || k == kindInt64 || k == kindFloat32 || k == kindFloat64 || k == kindDecimal
}

func isFloatKind(k typeKind) bool { return k == kindFloat32 || k == kindFloat64 }

func isIntKind(k typeKind) bool { return k == kindInt32 || k == kindInt64 }

// Comparable reports whether values of the two types may be compared:
// numerics compare with numerics, text with text, booleans with booleans,
// and NULL with anything.
func Comparable(a, b sql.Type) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kindNull || kb == kindNull {
		return true
	}
	if isNumericKind(ka) && isNumericKind(kb) {
		return true
	}
	return ka == kb
}
