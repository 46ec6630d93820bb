// value defines the tagged field value model bridging a decoded binary
// cell to the SQL-type system the cursor exposes to callers. A FieldValue
// is never a bare zero value standing in for SQL NULL: null is represented
// by a nil Raw.
package value

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/pxsql/pxsql/sqltype"
)

// Raw is implemented by every concrete payload a FieldValue can carry.
type Raw interface {
	raw()
}

type Text string

func (Text) raw() {}

type Integer int64

func (Integer) raw() {}

type Float float64

func (Float) raw() {}

type Boolean bool

func (Boolean) raw() {}

type Bytes []byte

func (Bytes) raw() {}

type Date time.Time

func (Date) raw() {}

type Time time.Time

func (Time) raw() {}

type Timestamp time.Time

func (Timestamp) raw() {}

// FieldValue is a single cell: a SQL type code plus an optional payload.
// Equality is type-code then value, per spec.
type FieldValue struct {
	SQLType sqltype.Code
	Raw     Raw
}

// Null returns a FieldValue of the given type with no payload.
func Null(t sqltype.Code) FieldValue {
	return FieldValue{SQLType: t}
}

// IsNull reports whether the field carries no value.
func (f FieldValue) IsNull() bool {
	return f.Raw == nil
}

// Equal compares type code then value, per spec.md §3.
func (f FieldValue) Equal(other FieldValue) bool {
	if f.SQLType != other.SQLType {
		return false
	}
	if f.IsNull() || other.IsNull() {
		return f.IsNull() == other.IsNull()
	}
	return reflect.DeepEqual(f.Raw, other.Raw)
}

// Lexical renders the field's value as text regardless of its underlying
// SQL type, for host code that only wants a display string. Returns ("",
// true) for null.
func (f FieldValue) Lexical() (string, bool) {
	if f.IsNull() {
		return "", true
	}
	switch v := f.Raw.(type) {
	case Text:
		return string(v), false
	case Integer:
		return strconv.FormatInt(int64(v), 10), false
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), false
	case Boolean:
		if v {
			return "true", false
		}
		return "false", false
	case Date:
		return time.Time(v).Format("2006-01-02"), false
	case Time:
		return time.Time(v).Format("15:04:05"), false
	case Timestamp:
		return time.Time(v).Format("2006-01-02 15:04:05"), false
	case Bytes:
		return string(v), false
	default:
		return fmt.Sprintf("%v", v), false
	}
}

// Int64 converts the field to an integer. Textual values parse with
// strconv; non-numeric text and anything else that cannot convert return 0.
func (f FieldValue) Int64() (int64, bool) {
	if f.IsNull() {
		return 0, true
	}
	switch v := f.Raw.(type) {
	case Integer:
		return int64(v), false
	case Float:
		return int64(v), false
	case Boolean:
		if v {
			return 1, false
		}
		return 0, false
	case Text:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, false
	default:
		return 0, false
	}
}

// Float64 converts the field to a float.
func (f FieldValue) Float64() (float64, bool) {
	if f.IsNull() {
		return 0, true
	}
	switch v := f.Raw.(type) {
	case Float:
		return float64(v), false
	case Integer:
		return float64(v), false
	case Text:
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, false
		}
		return n, false
	default:
		return 0, false
	}
}

// Bool converts the field to a boolean.
func (f FieldValue) Bool() (bool, bool) {
	if f.IsNull() {
		return false, true
	}
	switch v := f.Raw.(type) {
	case Boolean:
		return bool(v), false
	case Integer:
		return v != 0, false
	case Text:
		b, err := strconv.ParseBool(string(v))
		if err != nil {
			return false, false
		}
		return b, false
	default:
		return false, false
	}
}

// Time converts the field to a time.Time, for Date/Time/Timestamp columns.
func (f FieldValue) Time() (time.Time, bool) {
	if f.IsNull() {
		return time.Time{}, true
	}
	switch v := f.Raw.(type) {
	case Date:
		return time.Time(v), false
	case Time:
		return time.Time(v), false
	case Timestamp:
		return time.Time(v), false
	default:
		return time.Time{}, false
	}
}

// BytesValue converts the field to a byte slice.
func (f FieldValue) BytesValue() ([]byte, bool) {
	if f.IsNull() {
		return nil, true
	}
	switch v := f.Raw.(type) {
	case Bytes:
		return []byte(v), false
	case Text:
		return []byte(v), false
	default:
		s, null := f.Lexical()
		return []byte(s), null
	}
}

// Row is an ordered sequence of field values, one per projected column.
type Row []FieldValue
