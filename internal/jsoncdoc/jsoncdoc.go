// Package jsoncdoc implements an ordered JSONC document: an object whose key
// order and per-key comment blocks survive a parse/modify/serialize round
// trip. Object values are nested documents carrying their own formatting
// metadata, so comments are preserved at every depth; scalar and array
// values are plain JSON. Comments inside arrays are not retained.
package jsoncdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// Entry is one key with its value and the comment block that precedes it in
// the source text. Exactly one of raw (scalar/array JSON) or obj (nested
// object) is set.
type Entry struct {
	Key     string
	Comment string // verbatim comment lines, newline-joined, "" if none
	raw     json.RawMessage
	obj     *Document
}

// Raw returns the entry's value as compact JSON.
func (e *Entry) Raw() json.RawMessage {
	if e.obj != nil {
		return e.obj.compact()
	}
	return append(json.RawMessage(nil), e.raw...)
}

// Document is an ordered JSONC object.
type Document struct {
	header   string // comments above the opening brace (root document only)
	trailing string // comments between the last entry and the closing brace
	entries  []*Entry
	index    map[string]int
}

// New returns an empty document.
func New() *Document {
	return &Document{index: make(map[string]int)}
}

// Parse reads a JSONC object, recording key order and the comment block
// attached to each key at every nesting depth. The root value must be an
// object.
func Parse(data []byte) (*Document, error) {
	p := &parser{data: data}
	if err := p.skipSpace(true); err != nil {
		return nil, err
	}
	header := p.takePending()
	if p.eof() || p.data[p.i] != '{' {
		return nil, errors.New("jsoncdoc: root value must be an object")
	}
	d, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	d.header = header
	return d, nil
}

// normalize strips comments and trailing commas from a raw JSONC scalar or
// array value and compacts it to canonical JSON.
func normalize(raw []byte) (json.RawMessage, error) {
	plain := jsonc.ToJSON(raw)
	var buf bytes.Buffer
	if err := json.Compact(&buf, plain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Len returns the number of keys.
func (d *Document) Len() int { return len(d.entries) }

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Key
	}
	return keys
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.index[key]
	return ok
}

// Object returns the nested document of key, or nil when the key is absent
// or not an object.
func (d *Document) Object(key string) *Document {
	idx, ok := d.index[key]
	if !ok {
		return nil
	}
	return d.entries[idx].obj
}

// Raw returns the compact JSON value of key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	idx, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.entries[idx].Raw(), true
}

// Get decodes the value of key.
func (d *Document) Get(key string) (any, bool) {
	raw, ok := d.Raw(key)
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Set replaces the value of key, keeping its position and comment block but
// discarding nested formatting metadata the old value carried. A new key is
// appended at the end with no comment. Use Merge to update an object value
// without losing its nested comments.
func (d *Document) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("jsoncdoc: marshal value of key %q: %w", key, err)
	}
	d.setRaw(key, raw)
	return nil
}

func (d *Document) setRaw(key string, raw json.RawMessage) {
	if idx, ok := d.index[key]; ok {
		d.entries[idx].raw = raw
		d.entries[idx].obj = nil
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, &Entry{Key: key, raw: raw})
}

// Merge applies overrides key by key: when the existing value is an object
// and the override is a map the merge recurses, so untouched nested fields
// keep their comments, order, and values; otherwise the override replaces
// the value. Existing keys keep their comment block and position; new keys
// are appended. Keys are applied in sorted order so the result is
// deterministic.
func (d *Document) Merge(overrides map[string]any) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := overrides[k]
		newMap, newIsMap := v.(map[string]any)
		if newIsMap {
			if obj := d.Object(k); obj != nil {
				if err := obj.Merge(newMap); err != nil {
					return err
				}
				continue
			}
			// existing plain-map value (no formatting metadata): merge
			// semantically, override wins
			if cur, ok := d.Get(k); ok {
				if curMap, isMap := cur.(map[string]any); isMap {
					merged := make(map[string]any, len(curMap)+len(newMap))
					for mk, mv := range curMap {
						merged[mk] = mv
					}
					if err := mergo.Merge(&merged, newMap, mergo.WithOverride); err != nil {
						return fmt.Errorf("jsoncdoc: merge key %q: %w", k, err)
					}
					v = merged
				}
			}
		}
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// ToMap decodes the whole document into a plain map. Key order and comments
// are lost.
func (d *Document) ToMap() (map[string]any, error) {
	m := make(map[string]any, len(d.entries))
	for _, e := range d.entries {
		var v any
		if err := json.Unmarshal(e.Raw(), &v); err != nil {
			return nil, fmt.Errorf("jsoncdoc: decode key %q: %w", e.Key, err)
		}
		m[e.Key] = v
	}
	return m, nil
}

// compact renders the document as compact JSON, comments dropped, key order
// kept.
func (d *Document) compact() json.RawMessage {
	var buf bytes.Buffer
	d.appendCompact(&buf)
	return buf.Bytes()
}

func (d *Document) appendCompact(buf *bytes.Buffer) {
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(e.Key)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if e.obj != nil {
			e.obj.appendCompact(buf)
		} else {
			buf.Write(e.raw)
		}
	}
	buf.WriteByte('}')
}

// MarshalIndent serializes the document with two-space indentation,
// re-emitting the comment blocks recorded at parse time, at every depth.
func (d *Document) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	writeCommentBlock(&buf, d.header, "")
	d.appendObject(&buf, "")
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (d *Document) appendObject(buf *bytes.Buffer, indent string) {
	if len(d.entries) == 0 && d.trailing == "" {
		buf.WriteString("{}")
		return
	}
	buf.WriteString("{\n")
	inner := indent + "  "
	for i, e := range d.entries {
		writeCommentBlock(buf, e.Comment, inner)
		keyJSON, _ := json.Marshal(e.Key)
		buf.WriteString(inner)
		buf.Write(keyJSON)
		buf.WriteString(": ")
		if e.obj != nil {
			e.obj.appendObject(buf, inner)
		} else {
			appendIndented(buf, e.raw, inner)
		}
		if i < len(d.entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeCommentBlock(buf, d.trailing, inner)
	buf.WriteString(indent)
	buf.WriteByte('}')
}

// appendIndented pretty-prints a compact JSON value (as produced by
// normalize or json.Marshal), two-space indented, starting at base depth.
func appendIndented(buf *bytes.Buffer, raw []byte, base string) {
	indent := base
	for i := 0; i < len(raw); {
		switch c := raw[i]; c {
		case '"':
			end := stringEnd(raw, i)
			buf.Write(raw[i:end])
			i = end
		case '{', '[':
			closer := byte('}')
			if c == '[' {
				closer = ']'
			}
			if i+1 < len(raw) && raw[i+1] == closer {
				buf.WriteByte(c)
				buf.WriteByte(closer)
				i += 2
				continue
			}
			indent += "  "
			buf.WriteByte(c)
			buf.WriteByte('\n')
			buf.WriteString(indent)
			i++
		case '}', ']':
			if len(indent) >= 2 {
				indent = indent[:len(indent)-2]
			}
			buf.WriteByte('\n')
			buf.WriteString(indent)
			buf.WriteByte(c)
			i++
		case ',':
			buf.WriteString(",\n")
			buf.WriteString(indent)
			i++
		case ':':
			buf.WriteString(": ")
			i++
		default:
			buf.WriteByte(c)
			i++
		}
	}
}

// stringEnd returns the index just past the string starting at raw[start].
func stringEnd(raw []byte, start int) int {
	for i := start + 1; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(raw)
}

func writeCommentBlock(buf *bytes.Buffer, block, indent string) {
	if block == "" {
		return
	}
	for _, line := range strings.Split(block, "\n") {
		buf.WriteString(indent)
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}
