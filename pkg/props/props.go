// Package props provides an insertion-ordered string map used for CSS style
// maps and HTML attribute maps. Ordering matters for stable code output, so
// every codec (JSON, YAML, msgpack) writes the entries in insertion order.
package props

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered map of string keys to string values.
// The zero value is ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns a Map populated with the given key/value pairs.
// It panics if pairs has an odd length.
func New(pairs ...string) *Map {
	if len(pairs)%2 != 0 {
		panic("props: odd number of arguments to New")
	}
	m := &Map{}
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetDefault stores value only if key is not present yet.
// It reports whether the value was stored.
func (m *Map) SetDefault(key, value string) bool {
	if m.Has(key) {
		return false
	}
	m.Set(key, value)
	return true
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value stored under key or the empty string.
func (m *Map) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining keys.
func (m *Map) Delete(keys ...string) {
	if m == nil || m.values == nil {
		return
	}
	for _, key := range keys {
		if _, ok := m.values[key]; !ok {
			continue
		}
		delete(m.values, key)
		for i, k := range m.keys {
			if k == key {
				m.keys = append(m.keys[:i], m.keys[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, value string) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Merge copies every entry of other into m. When overwrite is false, keys
// already present in m are left untouched.
func (m *Map) Merge(other *Map, overwrite bool) {
	other.Range(func(k, v string) bool {
		if overwrite || !m.Has(k) {
			m.Set(k, v)
		}
		return true
	})
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := &Map{}
	c.Merge(m, true)
	return c
}

// Equal reports whether both maps hold the same entries in the same order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// String renders the map as "k: v; k: v" for debugging.
func (m *Map) String() string {
	var buf bytes.Buffer
	m.Range(func(k, v string) bool {
		if buf.Len() > 0 {
			buf.WriteString("; ")
		}
		fmt.Fprintf(&buf, "%s: %s", k, v)
		return true
	})
	return buf.String()
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the order of its keys.
// Non-string values are stored in their JSON text form.
func (m *Map) UnmarshalJSON(data []byte) error {
	*m = Map{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("props: expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("props: expected string key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("props: decode value of %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(bytes.TrimSpace(raw))
		}
		m.Set(key, s)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML writes the entries as a YAML mapping in insertion order.
func (m Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.values[k]},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping the order of its keys.
func (m *Map) UnmarshalYAML(value *yaml.Node) error {
	*m = Map{}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("props: line %d: expected mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("props: line %d: value of %q is not a scalar", v.Line, k.Value)
		}
		m.Set(k.Value, v.Value)
	}
	return nil
}

var (
	_ msgpack.CustomEncoder = (*Map)(nil)
	_ msgpack.CustomDecoder = (*Map)(nil)
)

// EncodeMsgpack writes the entries as a msgpack map in insertion order.
func (m *Map) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	for _, k := range m.Keys() {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.EncodeString(m.values[k]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads a msgpack map keeping the order of its keys.
func (m *Map) DecodeMsgpack(dec *msgpack.Decoder) error {
	*m = Map{}
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return err
		}
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		m.Set(k, v)
	}
	return nil
}
