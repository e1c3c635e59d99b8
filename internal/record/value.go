package record

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a spreadsheet or archive scalar.
type Value struct {
	kind Kind
	str  string
	num  float64
	i64  int64
	b    bool
}

// Null returns the empty value.
func Null() Value { return Value{} }

// String wraps a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a floating point value as read from a workbook.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps an integer value as read from an int64 archive column.
func Int(i int64) Value { return Value{kind: KindInt, i64: i} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// OptionalString returns Null for a nil pointer.
func OptionalString(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value is null or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Str returns the raw string payload; empty for non-string kinds.
func (v Value) Str() string { return v.str }

// Float returns the numeric payload for number and int kinds.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindInt:
		return float64(v.i64), true
	default:
		return 0, false
	}
}

// Int64 returns the value as an integer when it is integral.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i64, true
	case KindNumber:
		if !IsIntegral(v.num) {
			return 0, false
		}
		return int64(v.num), true
	default:
		return 0, false
	}
}

// BoolValue returns the boolean payload.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Text renders the value the way it is compared in keys and written to text
// columns. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i64, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal compares kind-insensitively for numbers so that an integral float
// read from a workbook equals the int64 it becomes after an archive round trip.
func (v Value) Equal(other Value) bool {
	if a, ok := v.Float(); ok {
		if b, ok := other.Float(); ok {
			return a == b
		}
		return false
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

// IsIntegral reports whether f has no fractional part and fits in an int64.
func IsIntegral(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if f != math.Trunc(f) {
		return false
	}
	return f >= math.MinInt64 && f < math.MaxInt64
}

// ParseCell converts a raw spreadsheet cell string into a Value. Numeric text
// in decimal notation becomes a number, everything else a string.
// Blank input is Null.
func ParseCell(raw string) Value {
	if strings.TrimSpace(raw) == "" {
		return Null()
	}
	trimmed := strings.TrimSpace(raw)
	if !numericText(trimmed) {
		return String(raw)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return String(raw)
}

// numericText reports whether s holds only digits, signs, decimal points and
// exponent markers, so "24_25", "0x10" and "Inf" stay text.
func numericText(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return s != ""
}
