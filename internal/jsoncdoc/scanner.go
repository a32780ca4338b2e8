package jsoncdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// parser is a position-tracking scanner over the raw JSONC text. It only
// needs to understand enough structure to find top-level keys, their value
// spans, and the comments between them; value contents are handed off to
// encoding/json.
type parser struct {
	data    []byte
	i       int
	pending []string
}

func (p *parser) eof() bool { return p.i >= len(p.data) }

func (p *parser) takePending() string {
	s := strings.Join(p.pending, "\n")
	p.pending = nil
	return s
}

// skipSpace advances over whitespace and comments. When collect is true,
// comment text is accumulated for attachment to the next key.
func (p *parser) skipSpace(collect bool) error {
	for !p.eof() {
		switch c := p.data[p.i]; c {
		case ' ', '\t', '\r', '\n':
			p.i++
		case '/':
			text, err := p.scanComment()
			if err != nil {
				return err
			}
			if collect {
				p.pending = append(p.pending, text...)
			}
		default:
			return nil
		}
	}
	return nil
}

// scanComment consumes a // or /* */ comment and returns its lines.
func (p *parser) scanComment() ([]string, error) {
	if p.i+1 >= len(p.data) {
		return nil, errors.New("jsoncdoc: unexpected '/' at end of input")
	}
	switch p.data[p.i+1] {
	case '/':
		start := p.i
		for !p.eof() && p.data[p.i] != '\n' {
			p.i++
		}
		return []string{strings.TrimRight(string(p.data[start:p.i]), "\r")}, nil
	case '*':
		start := p.i
		p.i += 2
		for {
			if p.i+1 >= len(p.data) {
				return nil, errors.New("jsoncdoc: unterminated block comment")
			}
			if p.data[p.i] == '*' && p.data[p.i+1] == '/' {
				p.i += 2
				break
			}
			p.i++
		}
		lines := strings.Split(string(p.data[start:p.i]), "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("jsoncdoc: unexpected character %q", p.data[p.i])
	}
}

// parseObject parses an object starting at '{', recursing into nested
// objects so their key order and comments are recorded too.
func (p *parser) parseObject() (*Document, error) {
	d := New()
	p.i++ // consume '{'
	for {
		if err := p.skipSpace(true); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, errors.New("jsoncdoc: unterminated object")
		}
		switch p.data[p.i] {
		case '}':
			d.trailing = p.takePending()
			p.i++
			return d, nil
		case ',':
			p.i++
			continue
		case '"':
			// key follows
		default:
			return nil, fmt.Errorf("jsoncdoc: unexpected character %q", p.data[p.i])
		}
		comment := p.takePending()
		key, err := p.scanString()
		if err != nil {
			return nil, err
		}
		if err := p.skipSpace(false); err != nil {
			return nil, err
		}
		if p.eof() || p.data[p.i] != ':' {
			return nil, fmt.Errorf("jsoncdoc: expected ':' after key %q", key)
		}
		p.i++
		if err := p.skipSpace(false); err != nil {
			return nil, err
		}
		entry := &Entry{Key: key, Comment: comment}
		if !p.eof() && p.data[p.i] == '{' {
			obj, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			entry.obj = obj
		} else {
			raw, err := p.scanValue()
			if err != nil {
				return nil, fmt.Errorf("jsoncdoc: value of key %q: %w", key, err)
			}
			compact, err := normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("jsoncdoc: value of key %q: %w", key, err)
			}
			entry.raw = compact
		}
		if idx, ok := d.index[key]; ok {
			// duplicate key: last declaration wins, position kept
			d.entries[idx].raw = entry.raw
			d.entries[idx].obj = entry.obj
			continue
		}
		d.index[key] = len(d.entries)
		d.entries = append(d.entries, entry)
	}
}

// scanString consumes a JSON string and returns its decoded value.
func (p *parser) scanString() (string, error) {
	span, err := p.scanStringSpan()
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(span, &s); err != nil {
		return "", fmt.Errorf("jsoncdoc: invalid string: %w", err)
	}
	return s, nil
}

// scanStringSpan consumes a JSON string and returns its raw span including
// the surrounding quotes.
func (p *parser) scanStringSpan() ([]byte, error) {
	start := p.i
	p.i++ // opening quote
	for !p.eof() {
		switch p.data[p.i] {
		case '\\':
			p.i += 2
		case '"':
			p.i++
			return p.data[start:p.i], nil
		default:
			p.i++
		}
	}
	return nil, errors.New("jsoncdoc: unterminated string")
}

// scanValue consumes one JSONC value and returns its raw span, comments and
// trailing commas included.
func (p *parser) scanValue() ([]byte, error) {
	if p.eof() {
		return nil, errors.New("unexpected end of input")
	}
	start := p.i
	switch p.data[p.i] {
	case '"':
		if _, err := p.scanStringSpan(); err != nil {
			return nil, err
		}
	case '{', '[':
		depth := 0
		for !p.eof() {
			switch p.data[p.i] {
			case '"':
				if _, err := p.scanStringSpan(); err != nil {
					return nil, err
				}
			case '{', '[':
				depth++
				p.i++
			case '}', ']':
				depth--
				p.i++
				if depth == 0 {
					return p.data[start:p.i], nil
				}
			case '/':
				if _, err := p.scanComment(); err != nil {
					return nil, err
				}
			default:
				p.i++
			}
		}
		return nil, errors.New("unterminated composite value")
	default:
		// number, true, false, null
		for !p.eof() && !isValueTerminator(p.data[p.i]) {
			p.i++
		}
	}
	return p.data[start:p.i], nil
}

func isValueTerminator(c byte) bool {
	switch c {
	case ',', '}', ']', ' ', '\t', '\r', '\n', '/':
		return true
	}
	return false
}
