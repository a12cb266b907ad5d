package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Entry is one key/count pair of a CountMap.
type Entry struct {
	Key   string
	Count int64
}

// CountMap is a string-keyed counter that remembers insertion order and
// marshals to a JSON object in that order. Ranked order assigned at persist
// time would be destroyed by Go's key-sorting map marshalling, so the
// analysis document stores every counter through this type.
type CountMap struct {
	keys   []string
	counts map[string]int64
}

// NewCountMap creates an empty CountMap.
func NewCountMap() *CountMap {
	return &CountMap{counts: make(map[string]int64)}
}

// Add adds delta to the key's count, inserting the key at the end of the
// order on first sight.
func (m *CountMap) Add(key string, delta int64) {
	if _, ok := m.counts[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.counts[key] += delta
}

// Get returns the count for key, zero when absent.
func (m *CountMap) Get(key string) int64 {
	return m.counts[key]
}

// Has reports whether the key is present.
func (m *CountMap) Has(key string) bool {
	_, ok := m.counts[key]

	return ok
}

// Len returns the number of keys.
func (m *CountMap) Len() int {
	return len(m.keys)
}

// Delete removes the key, preserving the order of the remaining keys.
func (m *CountMap) Delete(key string) {
	if _, ok := m.counts[key]; !ok {
		return
	}

	delete(m.counts, key)

	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)

			break
		}
	}
}

// Entries returns the key/count pairs in the map's current order.
func (m *CountMap) Entries() []Entry {
	entries := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		entries[i] = Entry{Key: k, Count: m.counts[k]}
	}

	return entries
}

// Ranked returns a copy ordered by the two-pass ranking: keys ascending
// first, then counts descending with a stable sort, so equal counts keep
// ascending-key order.
func (m *CountMap) Ranked() *CountMap {
	entries := m.Entries()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })

	ranked := NewCountMap()
	for _, e := range entries {
		ranked.Add(e.Key, e.Count)
	}

	return ranked
}

// Top returns up to n leading entries in the map's current order.
func (m *CountMap) Top(n int) []Entry {
	if n > len(m.keys) {
		n = len(m.keys)
	}

	return m.Entries()[:n]
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (m *CountMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal count key: %w", err)
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(m.counts[k], 10))
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
func (m *CountMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode count map: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode count map: expected object, got %v", tok)
	}

	m.keys = nil
	m.counts = make(map[string]int64)

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("decode count key: %w", keyErr)
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode count key: expected string, got %v", keyTok)
		}

		valTok, valErr := dec.Token()
		if valErr != nil {
			return fmt.Errorf("decode count for %q: %w", key, valErr)
		}

		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("decode count for %q: expected number, got %v", key, valTok)
		}

		count, numErr := num.Int64()
		if numErr != nil {
			return fmt.Errorf("decode count for %q: %w", key, numErr)
		}

		m.Add(key, count)
	}

	if _, err = dec.Token(); err != nil {
		return fmt.Errorf("decode count map: %w", err)
	}

	return nil
}

// MarshalYAML emits a YAML mapping with keys in insertion order, matching
// the JSON form.
func (m *CountMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, k := range m.keys {
		var key, count yaml.Node

		if err := key.Encode(k); err != nil {
			return nil, fmt.Errorf("encode count key: %w", err)
		}

		if err := count.Encode(m.counts[k]); err != nil {
			return nil, fmt.Errorf("encode count for %q: %w", k, err)
		}

		node.Content = append(node.Content, &key, &count)
	}

	return node, nil
}
