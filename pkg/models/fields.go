package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotObject = errors.New("expected a JSON object")

// Fields is a JSON object that keeps its keys in insertion order, so answers
// are listed in the order they were submitted.
type Fields struct {
	keys []string
	vals map[string]any
}

func NewFields() Fields {
	return Fields{vals: map[string]any{}}
}

// FieldsFromMap builds Fields from m with keys in the given order; keys of m
// not listed are appended in map order.
func FieldsFromMap(m map[string]any, order ...string) Fields {
	f := NewFields()
	for _, k := range order {
		if v, ok := m[k]; ok {
			f.Set(k, v)
		}
	}
	for k, v := range m {
		if !f.Has(k) {
			f.Set(k, v)
		}
	}
	return f
}

func (f *Fields) Set(key string, v any) {
	if f.vals == nil {
		f.vals = map[string]any{}
	}
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = v
}

func (f Fields) Get(key string) (any, bool) {
	v, ok := f.vals[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (f Fields) String(key string) string {
	s, _ := f.vals[key].(string)
	return s
}

func (f Fields) Has(key string) bool {
	_, ok := f.vals[key]
	return ok
}

func (f *Fields) Delete(key string) {
	if _, ok := f.vals[key]; !ok {
		return
	}
	delete(f.vals, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
}

func (f Fields) Len() int { return len(f.keys) }

func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Map returns an unordered copy.
func (f Fields) Map() map[string]any {
	out := make(map[string]any, len(f.vals))
	for k, v := range f.vals {
		out[k] = v
	}
	return out
}

func (f Fields) Clone() Fields {
	out := NewFields()
	for _, k := range f.keys {
		out.Set(k, f.vals[k])
	}
	return out
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(f.vals[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts only objects; nested values decode as plain maps.
func (f *Fields) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	out := NewFields()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}
