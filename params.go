package patman

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

var schemaEncoder = schema.NewEncoder()

// Param is a single query parameter. A nil Value, or a nil pointer, means
// the parameter is undefined and is left out of the query string. Slice and
// array values repeat the key once per element.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered list of query parameters.
// Encoding preserves the order in which parameters were added.
type Params []Param

// Add returns p with key=value appended.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Defined returns the parameters whose value is not undefined.
func (p Params) Defined() Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if !isUndefined(kv.Value) {
			out = append(out, kv)
		}
	}
	return out
}

// Encode serializes p as a query string without the leading "?".
// Array values use the repeat format: k=a&k=b.
func (p Params) Encode() string {
	var b strings.Builder
	write := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	for _, kv := range p.Defined() {
		rv := reflect.ValueOf(kv.Value)
		for rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Pointer {
			continue
		}
		if isList(rv) {
			for i := 0; i < rv.Len(); i++ {
				elem := rv.Index(i).Interface()
				if isUndefined(elem) {
					continue
				}
				write(kv.Key, formatParam(elem))
			}
			continue
		}
		write(kv.Key, formatParam(rv.Interface()))
	}
	return b.String()
}

// StructParams encodes a struct into Params using `schema` struct tags.
// Keys appear in field declaration order; keys produced for nested structs
// follow in sorted order.
func StructParams(v any) (Params, error) {
	values := map[string][]string{}
	if err := schemaEncoder.Encode(v, values); err != nil {
		return nil, fmt.Errorf("patman: encode params: %w", err)
	}

	var out Params
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("schema"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if vals, ok := values[name]; ok {
			out = append(out, Param{Key: name, Value: vals})
			delete(values, name)
		}
	}

	rest := make([]string, 0, len(values))
	for k := range values {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, Param{Key: k, Value: values[k]})
	}
	return out, nil
}

func isUndefined(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isList(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

// formatParam renders a scalar in its natural textual form.
func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []byte:
		return string(x)
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return string(b)
		}
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
