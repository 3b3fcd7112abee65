package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which field of a Value is meaningful.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindBool
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "empty"
	}
}

// Value is a single spreadsheet cell. It keeps the cell's type so that
// "y", TRUE and 1 stay distinct values.
type Value struct {
	kind   Kind
	text   string
	flag   bool
	number decimal.Decimal
	at     time.Time
}

// Empty returns the null value.
func Empty() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, number: d} }

// Int returns a numeric value from an integer.
func Int(i int64) Value { return Number(decimal.NewFromInt(i)) }

// Float returns a numeric value from a float.
func Float(f float64) Value { return Number(decimal.NewFromFloat(f)) }

// Time returns a date or date-time value.
func Time(t time.Time) Value { return Value{kind: KindTime, at: t} }

// ValueOf converts a Go scalar into a Value. It is used for values coming
// from decoded configuration (YAML, JSON) where the scalar type is meaningful.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Empty(), nil
	case Value:
		return t, nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Number(decimal.NewFromUint64(t)), nil
	case float64:
		return Float(t), nil
	case decimal.Decimal:
		return Number(t), nil
	case time.Time:
		return Time(t), nil
	default:
		return Empty(), fmt.Errorf("unsupported value type %T", v)
	}
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is null.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsText returns the text of a text value and whether the value was text.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsTime returns the instant of a time value and whether the value was a time.
func (v Value) AsTime() (time.Time, bool) {
	return v.at, v.kind == KindTime
}

// HasClock reports whether a time value carries a time of day.
func (v Value) HasClock() bool {
	if v.kind != KindTime {
		return false
	}
	h, m, s := v.at.Clock()
	return h != 0 || m != 0 || s != 0 || v.at.Nanosecond() != 0
}

// Decimal returns the numeric content of the value. Text that parses as a
// number is accepted so that amounts stored as text still add up.
func (v Value) Decimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindNumber:
		return v.number, true
	case KindText:
		d, err := decimal.NewFromString(strings.TrimSpace(v.text))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// Equal is exact, kind-sensitive equality. Numbers compare by value, so 1
// and 1.0 are equal, but Text("1"), Bool(true) and Int(1) are all distinct.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.flag == o.flag
	case KindNumber:
		return v.number.Equal(o.number)
	case KindTime:
		return v.at.Equal(o.at)
	default:
		return true
	}
}

// String renders the value for display and for sheet cells.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindBool:
		if v.flag {
			return "TRUE"
		}
		return "FALSE"
	case KindNumber:
		return v.number.String()
	case KindTime:
		if v.HasClock() {
			return v.at.Format(time.DateTime)
		}
		return v.at.Format(time.DateOnly)
	default:
		return ""
	}
}

// Interface returns the value as a plain Go scalar (string, bool, int64,
// float64, time.Time or nil), the form spreadsheet writers expect.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindBool:
		return v.flag
	case KindNumber:
		if v.number.IsInteger() && v.number.Abs().LessThan(decimal.NewFromInt(1<<53)) {
			return v.number.IntPart()
		}
		return v.number.InexactFloat64()
	case KindTime:
		return v.at
	default:
		return nil
	}
}

// GoString is used by %#v and keeps test failures readable.
func (v Value) GoString() string {
	switch v.kind {
	case KindText:
		return "Text(" + strconv.Quote(v.text) + ")"
	case KindBool:
		return "Bool(" + strconv.FormatBool(v.flag) + ")"
	case KindNumber:
		return "Number(" + v.number.String() + ")"
	case KindTime:
		return "Time(" + v.at.Format(time.RFC3339Nano) + ")"
	default:
		return "Empty()"
	}
}
