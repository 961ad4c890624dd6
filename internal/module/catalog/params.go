package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Param is a single named request parameter.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered list of request parameters used to derive cache keys.
// Insertion order never affects the derived key.
type Params struct {
	items []Param
}

// NewParams returns an empty parameter list.
func NewParams() *Params {
	return &Params{}
}

// Add sets name to value. A nil value leaves the parameter unset.
// Adding an existing name replaces its value.
func (p *Params) Add(name string, value any) *Params {
	if value == nil {
		return p.remove(name)
	}
	for i := range p.items {
		if p.items[i].Name == name {
			p.items[i].Value = value
			return p
		}
	}
	p.items = append(p.items, Param{Name: name, Value: value})
	return p
}

// AddString sets name when s is non-empty.
func (p *Params) AddString(name, s string) *Params {
	if s == "" {
		return p
	}
	return p.Add(name, s)
}

// AddStrings sets name when values is non-empty.
func (p *Params) AddStrings(name string, values []string) *Params {
	if len(values) == 0 {
		return p
	}
	return p.Add(name, values)
}

func (p *Params) remove(name string) *Params {
	for i := range p.items {
		if p.items[i].Name == name {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	return p
}

// Len returns the number of set parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Encode serializes the parameters as a JSON object with names in ascending order.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return "{}"
	}

	items := make([]Param, len(p.items))
	copy(items, p.items)
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := make([]byte, 0, 64)
	out = append(out, '{')
	for i, it := range items {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendJSON(out, enc, &buf, it.Name)
		out = append(out, ':')
		out = appendJSON(out, enc, &buf, it.Value)
	}
	out = append(out, '}')
	return string(out)
}

func appendJSON(dst []byte, enc *json.Encoder, buf *bytes.Buffer, v any) []byte {
	buf.Reset()
	if err := enc.Encode(v); err != nil {
		// Unserializable values are a caller bug; keep the key deterministic anyway.
		return append(dst, "null"...)
	}
	return append(dst, bytes.TrimRight(buf.Bytes(), "\n")...)
}

// ComputeKey derives the cache key for an operation and its parameters.
func ComputeKey(op string, params *Params) string {
	return op + "_" + params.Encode()
}
