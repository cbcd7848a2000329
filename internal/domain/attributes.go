package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type AttrKind uint8

const (
	AttrString AttrKind = iota + 1
	AttrNumber
	AttrBool
	AttrList
)

// AttrValue is one value of a free-form attribute map: a string, a number,
// a bool or a list of strings. Nested objects are not representable.
type AttrValue struct {
	kind AttrKind
	str  string
	num  float64
	b    bool
	list []string
}

func StringAttr(v string) AttrValue { return AttrValue{kind: AttrString, str: v} }
func NumberAttr(v float64) AttrValue { return AttrValue{kind: AttrNumber, num: v} }
func BoolAttr(v bool) AttrValue { return AttrValue{kind: AttrBool, b: v} }
func ListAttr(v ...string) AttrValue { return AttrValue{kind: AttrList, list: append([]string(nil), v...)} }
func (v AttrValue) Kind() AttrKind { return v.kind }
func (v AttrValue) Text() string { return v.str }
func (v AttrValue) Number() float64 { return v.num }
func (v AttrValue) Bool() bool { return v.b }
func (v AttrValue) List() []string { return v.list }

func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AttrString:
		return json.Marshal(v.str)
	case AttrNumber:
		return json.Marshal(v.num)
	case AttrBool:
		return json.Marshal(v.b)
	case AttrList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

func (v *AttrValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty attribute value", ErrValidation)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringAttr(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolAttr(b)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: attribute lists may only contain strings", ErrValidation)
		}
		*v = ListAttr(list...)
	case '{':
		return fmt.Errorf("%w: nested attribute objects are not supported", ErrValidation)
	case 'n':
		return fmt.Errorf("%w: null attribute values are not supported", ErrValidation)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberAttr(n)
	}
	return nil
}

// Attributes is a flat, schema-less key/value map such as campaign
// demographics or media metadata.
type Attributes map[string]AttrValue
