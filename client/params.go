package client

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
)

// Param is one query parameter entry: a name and zero or more values. An
// entry with no values is emitted once with an empty value ("key="); an entry
// with N values is emitted N times.
type Param struct {
	Key    string
	Values []string
}

// Params is an ordered list of query parameters. Unlike [url.Values], encoding
// preserves insertion order instead of sorting keys.
type Params []Param

// Add appends one parameter entry, preserving insertion order.
func (p *Params) Add(key string, values ...string) {
	*p = append(*p, Param{Key: key, Values: values})
}

// Encode renders the parameters as a percent-encoded query string, without a
// leading "?". Entries with an empty key are skipped. Encoding is
// deterministic: the same Params always yield the same string.
func (p Params) Encode() string {
	var b strings.Builder
	for _, param := range p {
		if param.Key == "" {
			continue
		}
		if len(param.Values) == 0 {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(param.Key))
			b.WriteByte('=')
			continue
		}
		for _, v := range param.Values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(param.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// AppendTo returns base with the encoded query appended after a "?". If no
// parameter was emitted, base is returned unmodified.
func (p Params) AppendTo(base string) string {
	enc := p.Encode()
	if enc == "" {
		return base
	}
	return base + "?" + enc
}

// ParamsFromMap flexibly coerces a map to Params. Values may be nil (rendered
// as an empty string), scalars, [encoding.TextMarshaler], or slices of those.
// Map iteration order is not stable, so entries are sorted by key to keep the
// result deterministic; use [Params.Add] directly when order matters.
func ParamsFromMap(raw map[string]any) (Params, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out Params
	for _, k := range keys {
		vals, err := coerceParamValues(k, raw[k])
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Key: k, Values: vals})
	}
	return out, nil
}

func coerceParamValues(key string, v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return []string{""}, nil
	case bool, string, int, uint, int8, int16, int32, int64, uint8, uint16, uint32, uint64, uintptr:
		return []string{fmt.Sprint(v)}, nil
	case encoding.TextMarshaler:
		return []string{fmt.Sprint(v)}, nil
	}

	ref := reflect.ValueOf(v)
	if ref.Kind() != reflect.Slice {
		return nil, fmt.Errorf("can't encode query param '%s' with type: %T", key, v)
	}
	vals := make([]string, 0, ref.Len())
	for i := 0; i < ref.Len(); i++ {
		switch elem := ref.Index(i).Interface().(type) {
		case nil:
			vals = append(vals, "")
		case bool, string, int, uint, int8, int16, int32, int64, uint8, uint16, uint32, uint64, uintptr:
			vals = append(vals, fmt.Sprint(elem))
		case encoding.TextMarshaler:
			vals = append(vals, fmt.Sprint(elem))
		default:
			return nil, fmt.Errorf("can't encode query param '%s' with element type: %T", key, elem)
		}
	}
	return vals, nil
}

// ParamsFromStruct converts a tagged struct (see go-querystring `url` tags) to
// Params. Keys are emitted in sorted order.
func ParamsFromStruct(v any) (Params, error) {
	vals, err := query.Values(v)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out Params
	for _, k := range keys {
		out = append(out, Param{Key: k, Values: vals[k]})
	}
	return out, nil
}
