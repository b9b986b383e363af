package patman

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, skip := jsonField(f)
		if skip {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Schema decodes a generic JSON value into T, reporting one Failure per
// violated leaf.
type Schema[T any] interface {
	Name() string
	Decode(v any) (T, []Failure)
}

// Decode validates v against s. On success it returns the decoded value; a
// value that already has type T is returned unchanged.
func Decode[T any](s Schema[T], v any) (T, error) {
	out, failures := s.Decode(v)
	if len(failures) > 0 {
		var zero T
		return zero, newValidationError(failures)
	}
	return out, nil
}

// ParseBody converts a raw response body into a generic JSON value, with
// numbers kept as json.Number. Empty bodies yield nil and bodies that are not
// a single JSON document are returned as a string.
func ParseBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(body)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return string(body)
	}
	return v
}

type funcSchema[T any] struct {
	name   string
	decode func(v any) (T, []Failure)
}

// NewSchema adapts a decode function to Schema.
func NewSchema[T any](name string, decode func(v any) (T, []Failure)) Schema[T] {
	return funcSchema[T]{name: name, decode: decode}
}

func (s funcSchema[T]) Name() string                { return s.name }
func (s funcSchema[T]) Decode(v any) (T, []Failure) { return s.decode(v) }

type reflectSchema[T any] struct {
	typ reflect.Type
}

// SchemaOf returns a schema that checks a JSON value against the shape of T.
//
// Fields follow encoding/json naming. Non-pointer fields without omitempty
// must be present; pointers, interfaces, slices and maps may be null or
// absent. Once the shape matches, `validate` struct tags are enforced with
// go-playground/validator. For interface types such as any every value is
// accepted unchanged.
func SchemaOf[T any]() Schema[T] {
	return reflectSchema[T]{typ: reflect.TypeFor[T]()}
}

func (s reflectSchema[T]) Name() string {
	return s.typ.String()
}

func (s reflectSchema[T]) Decode(v any) (T, []Failure) {
	var out T
	if s.typ.Kind() == reflect.Interface && s.typ.NumMethod() == 0 {
		if v == nil {
			return out, nil
		}
		return v.(T), nil
	}
	if same, ok := v.(T); ok {
		return same, validateStruct(same)
	}

	w := &walker{}
	w.value(RootLabel, s.typ, v)
	if len(w.failures) > 0 {
		return out, w.failures
	}

	b, err := json.Marshal(v)
	if err == nil {
		err = json.Unmarshal(b, &out)
	}
	if err != nil {
		return out, []Failure{{Path: RootLabel, ExpectedType: s.Name(), Value: v}}
	}
	return out, validateStruct(out)
}

type jsonUnmarshaler interface {
	UnmarshalJSON([]byte) error
}

var unmarshalerType = reflect.TypeFor[jsonUnmarshaler]()

type walker struct {
	failures []Failure
}

func (w *walker) fail(path string, t reflect.Type, v any) {
	w.failures = append(w.failures, Failure{Path: path, ExpectedType: t.String(), Value: v})
}

func (w *walker) missing(path string, t reflect.Type) {
	w.failures = append(w.failures, Failure{Path: path, ExpectedType: t.String(), Missing: true})
}

func (w *walker) value(path string, t reflect.Type, v any) {
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		(t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType)) {
		w.custom(path, t, v)
		return
	}

	switch t.Kind() {
	case reflect.Pointer:
		if v != nil {
			w.value(path, t.Elem(), v)
		}
	case reflect.Interface:
		if t.NumMethod() != 0 {
			w.fail(path, t, v)
		}
	case reflect.String:
		if _, ok := v.(string); !ok {
			w.fail(path, t, v)
		}
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			w.fail(path, t, v)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := numberString(v)
		if !ok {
			w.fail(path, t, v)
		} else if _, err := strconv.ParseInt(n, 10, t.Bits()); err != nil {
			w.fail(path, t, v)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := numberString(v)
		if !ok {
			w.fail(path, t, v)
		} else if _, err := strconv.ParseUint(n, 10, t.Bits()); err != nil {
			w.fail(path, t, v)
		}
	case reflect.Float32, reflect.Float64:
		n, ok := numberString(v)
		if !ok {
			w.fail(path, t, v)
		} else if _, err := strconv.ParseFloat(n, t.Bits()); err != nil {
			w.fail(path, t, v)
		}
	case reflect.Slice:
		if v == nil {
			return
		}
		if t.Elem().Kind() == reflect.Uint8 {
			if _, ok := v.(string); !ok {
				w.fail(path, t, v)
			}
			return
		}
		w.elements(path, t, v)
	case reflect.Array:
		w.elements(path, t, v)
	case reflect.Map:
		if v == nil {
			return
		}
		obj, ok := v.(map[string]any)
		if !ok {
			w.fail(path, t, v)
			return
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.value(path+"."+k, t.Elem(), obj[k])
		}
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			w.fail(path, t, v)
			return
		}
		w.fields(path, t, obj)
	default:
		w.fail(path, t, v)
	}
}

func (w *walker) elements(path string, t reflect.Type, v any) {
	arr, ok := v.([]any)
	if !ok {
		w.fail(path, t, v)
		return
	}
	for i, e := range arr {
		w.value(path+"."+strconv.Itoa(i), t.Elem(), e)
	}
}

func (w *walker) fields(path string, t reflect.Type, obj map[string]any) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, omitempty, skip := jsonField(f)
		if skip {
			continue
		}
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				w.fields(path, ft, obj)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fp := path + "." + name
		fv, present := lookupKey(obj, name)
		if !present {
			if !omitempty && !nullable(f.Type) {
				w.missing(fp, f.Type)
			}
			continue
		}
		w.value(fp, f.Type, fv)
	}
}

func (w *walker) custom(path string, t reflect.Type, v any) {
	b, err := json.Marshal(v)
	if err == nil {
		err = json.Unmarshal(b, reflect.New(t).Interface())
	}
	if err != nil {
		w.fail(path, t, v)
	}
}

// lookupKey matches keys the way encoding/json does: exact first, then
// case-insensitively.
func lookupKey(obj map[string]any, name string) (any, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

func numberString(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// jsonField parses the json struct tag of f.
func jsonField(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == "omitempty" || opt == "omitzero" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func validateStruct(v any) []Failure {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var valErrs validator.ValidationErrors
	if err := validate.Struct(rv.Interface()); !errors.As(err, &valErrs) {
		return nil
	}
	failures := make([]Failure, 0, len(valErrs))
	for _, fe := range valErrs {
		failures = append(failures, Failure{
			Path:         validatorPath(fe.Namespace()),
			ExpectedType: fmt.Sprintf("%s (%s)", fe.Type(), formatValidationError(fe)),
			Value:        fe.Value(),
		})
	}
	return failures
}

// validatorPath rewrites a validator namespace such as "Page.items[0].name"
// into "#root.items.0.name".
func validatorPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok || rest == "" {
		return RootLabel
	}
	rest = strings.NewReplacer("[", ".", "]", "").Replace(rest)
	return RootLabel + "." + rest
}

// formatValidationError converts a validator.FieldError to a human-readable rule.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("min %s", ve.Param())
	case "max":
		return fmt.Sprintf("max %s", ve.Param())
	case "len":
		return fmt.Sprintf("len %s", ve.Param())
	case "eq":
		return fmt.Sprintf("equal to %s", ve.Param())
	case "ne":
		return fmt.Sprintf("not equal to %s", ve.Param())
	case "gt":
		return fmt.Sprintf("greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("at most %s", ve.Param())
	case "email":
		return "email address"
	case "url":
		return "URL"
	case "uuid":
		return "UUID"
	case "oneof":
		return fmt.Sprintf("one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("%s=%s", ve.Tag(), ve.Param())
		}
		return ve.Tag()
	}
}
