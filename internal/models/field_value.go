package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// FieldValueKind tags the variant held by a FieldValue.
type FieldValueKind int

const (
	KindNumber FieldValueKind = iota
	KindText
	KindBool
	KindDate
	KindJSON
	KindSelect
)

// FieldValue is the typed form of a dynamic field value. Values are coerced
// into this variant at the validator boundary so that mapping and condition
// logic never handles raw interface{} data.
type FieldValue struct {
	Kind   FieldValueKind
	Number float64
	Text   string
	Bool   bool
	Date   time.Time
	JSON   interface{}
}

func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Number: n} }
func TextValue(s string) FieldValue    { return FieldValue{Kind: KindText, Text: s} }
func BoolValue(b bool) FieldValue      { return FieldValue{Kind: KindBool, Bool: b} }
func DateValue(t time.Time) FieldValue { return FieldValue{Kind: KindDate, Date: t} }
func JSONValueOf(v interface{}) FieldValue {
	return FieldValue{Kind: KindJSON, JSON: v}
}
func SelectValue(s string) FieldValue { return FieldValue{Kind: KindSelect, Text: s} }

// Raw returns the untyped representation suitable for storage payloads.
func (v FieldValue) Raw() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindText, KindSelect:
		return v.Text
	case KindBool:
		return v.Bool
	case KindDate:
		return v.Date.Format(time.RFC3339)
	case KindJSON:
		return v.JSON
	}
	return nil
}

// dateLayouts are the accepted textual date formats, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AsNumber attempts a numeric reading of an untyped value. json.Unmarshal
// delivers numbers as float64; strings are parsed when they look numeric.
func AsNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsDate attempts a timestamp reading of an untyped value. Accepts
// time.Time, RFC3339 and date-only strings, and epoch milliseconds.
func AsDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		return time.UnixMilli(int64(d)), true
	case int64:
		return time.UnixMilli(d), true
	}
	return time.Time{}, false
}

// AsText returns a string reading of an untyped value, stringifying
// scalars the way the storage layer would.
func AsText(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
