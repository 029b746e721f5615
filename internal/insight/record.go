package insight

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iancoleman/orderedmap"
	"github.com/tidwall/gjson"
)

// Well-known insight fields. Templates are not required to carry any of them.
const (
	FieldUID               = "uid"
	FieldTitle             = "title"
	FieldSeverity          = "severity"
	FieldImpactedResources = "impactedResources"
	FieldData              = "data"
	FieldBreachDate        = "breachDate"
	FieldUpdatedTime       = "updatedTime"
)

var (
	// ErrNotObject is returned when a JSON document is not an object.
	ErrNotObject = errors.New("insight: JSON value is not an object")
	// ErrInvalidJSON is returned for malformed input, including trailing data after the object.
	ErrInvalidJSON = errors.New("insight: invalid JSON")
)

// Record is a JSON object whose keys keep the order they were decoded (or set) in.
// Nested objects are *Record, arrays are []any and numbers are json.Number.
type Record struct {
	om *orderedmap.OrderedMap
}

func newMap() *orderedmap.OrderedMap {
	om := orderedmap.New()
	om.SetEscapeHTML(false)
	return om
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{om: newMap()}
}

// Parse decodes a single JSON object.
func Parse(data []byte) (*Record, error) {
	r := NewRecord()
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil || r.om == nil {
		return 0
	}
	return len(r.om.Keys())
}

// Keys returns the keys in order.
func (r *Record) Keys() []string {
	if r == nil || r.om == nil {
		return nil
	}
	keys := r.om.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Has reports whether key is present, even with a null value.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.om == nil {
		return nil, false
	}
	return r.om.Get(key)
}

// Set stores value under key. New keys are appended; existing keys keep their position.
func (r *Record) Set(key string, value any) {
	if r.om == nil {
		r.om = newMap()
	}
	r.om.Set(key, value)
}

// Delete removes key if present.
func (r *Record) Delete(key string) {
	if r == nil || r.om == nil {
		return
	}
	r.om.Delete(key)
}

// String returns the value under key when it is a string.
func (r *Record) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns the string under key, or fallback.
func (r *Record) StringOr(key, fallback string) string {
	if s, ok := r.String(key); ok {
		return s
	}
	return fallback
}

// Object returns the nested object under key.
func (r *Record) Object(key string) (*Record, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Record)
	return obj, ok && obj != nil
}

// List returns the array under key.
func (r *Record) List(key string) ([]any, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

// Clone returns a deep copy. Mutating the copy never affects r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := NewRecord()
	for _, k := range r.Keys() {
		v, _ := r.om.Get(k)
		out.om.Set(k, cloneValue(v))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the record with its keys in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.om == nil {
		return []byte("{}"), nil
	}
	raw, err := r.om.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("insight: encode: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("insight: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, replacing any existing content.
// The input must hold exactly one object; anything but whitespace after it is rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return ErrNotObject
	}
	r.om = fromObject(doc).om
	return nil
}

func fromObject(obj gjson.Result) *Record {
	rec := NewRecord()
	obj.ForEach(func(key, value gjson.Result) bool {
		rec.om.Set(key.Str, fromValue(value))
		return true
	})
	return rec
}

// fromValue keeps number literals as written so large integers survive a round trip.
func fromValue(v gjson.Result) any {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.JSON:
		if v.IsObject() {
			return fromObject(v)
		}
		list := []any{}
		v.ForEach(func(_, item gjson.Result) bool {
			list = append(list, fromValue(item))
			return true
		})
		return list
	default:
		return nil
	}
}
