package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructSchema decodes raw request data into T and applies T's validation rules
type StructSchema[T any] struct {
	typ      reflect.Type
	fields   []fieldSpec
	byName   map[string]int
	embedded map[string]bool
}

type fieldSpec struct {
	name       string
	kind       reflect.Kind
	elem       reflect.Kind
	slice      bool
	hasDefault bool
	def        string
	messages   map[string]string
}

// For builds the schema for struct type T.
// It panics when T is not a struct; schemas are built while routes are declared.
func For[T any]() *StructSchema[T] {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("validation: schema type %s is not a struct", typ))
	}

	s := &StructSchema[T]{typ: typ, byName: make(map[string]int), embedded: make(map[string]bool)}
	s.collect(typ)
	return s
}

func (s *StructSchema[T]) collect(typ reflect.Type) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous && deref(field.Type).Kind() == reflect.Struct {
			s.embedded[jsonName(field)] = true
			s.collect(deref(field.Type))
			continue
		}
		if !field.IsExported() {
			continue
		}
		name := jsonName(field)
		if name == "" {
			continue
		}

		ft := deref(field.Type)
		spec := fieldSpec{
			name:     name,
			kind:     ft.Kind(),
			messages: parseMessages(field.Tag.Get("msg")),
		}
		if ft.Kind() == reflect.Slice && ft.Elem().Kind() != reflect.Uint8 {
			spec.slice = true
			spec.elem = deref(ft.Elem()).Kind()
		}
		spec.def, spec.hasDefault = field.Tag.Lookup("default")

		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, spec)
	}
}

// Type implements Validator
func (s *StructSchema[T]) Type() reflect.Type {
	return s.typ
}

// Validate implements Validator
func (s *StructSchema[T]) Validate(raw any) (any, Errors) {
	value, errs := s.Decode(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return value, nil
}

// Decode converts raw into T and runs the rules. Raw may be a JSON body ([]byte),
// a decoded JSON object (map[string]any) or query values (map[string][]string).
func (s *StructSchema[T]) Decode(raw any) (T, Errors) {
	var out T

	input, ok := s.normalize(raw)
	if !ok {
		return out, Errors{{Tag: "type", Message: MsgInvalidBody}}
	}

	var errs Errors
	failed := make(map[string]bool)
	coerced := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		value, present := input[f.name]
		if (!present || value == nil || value == "") && f.hasDefault {
			value, present = f.def, true
		}
		if !present || value == nil {
			continue
		}
		converted, ok := f.coerce(value)
		if !ok {
			errs = append(errs, f.fail("type", "", input[f.name]))
			failed[f.name] = true
			continue
		}
		coerced[f.name] = converted
	}

	data, err := json.Marshal(coerced)
	if err == nil {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if idx, ok := s.byName[typeErr.Field]; ok && !failed[typeErr.Field] {
				errs = append(errs, s.fields[idx].fail("type", "", input[typeErr.Field]))
			}
		}
		if len(errs) == 0 {
			errs = Errors{{Tag: "type", Message: MsgInvalidBody}}
		}
		return out, s.sorted(errs)
	}

	if err := Engine().Struct(&out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return out, Errors{{Tag: "type", Message: MsgInvalidBody}}
		}
		reported := make(map[string]bool)
		for _, fe := range verrs {
			path := s.path(fe.Namespace())
			top := topLevel(path)
			if failed[top] || reported[path] {
				continue
			}
			reported[path] = true

			idx, known := s.byName[top]
			switch {
			case known && path == top:
				errs = append(errs, s.fields[idx].fail(fe.Tag(), fe.Param(), input[top]))
			case known:
				errs = append(errs, s.fields[idx].failNested(path, fe))
			default:
				errs = append(errs, FieldError{
					Field:   path,
					Tag:     fe.Tag(),
					Message: DefaultMessage(path, fe.Tag(), fe.Param(), fe.Kind()),
					Value:   fe.Value(),
				})
			}
		}
	}

	return out, s.sorted(errs)
}

// normalize flattens the accepted raw shapes into a single map keyed by json name
func (s *StructSchema[T]) normalize(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, true
	case []byte:
		if len(strings.TrimSpace(string(v))) == 0 {
			return nil, false
		}
		var obj map[string]any
		if err := json.Unmarshal(v, &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	case map[string]any:
		return v, true
	case map[string][]string:
		out := make(map[string]any, len(v))
		for key, values := range v {
			if len(values) == 0 {
				continue
			}
			if idx, ok := s.byName[key]; ok && s.fields[idx].slice {
				out[key] = values
				continue
			}
			out[key] = values[0]
		}
		return out, true
	}
	return nil, false
}

func (s *StructSchema[T]) sorted(errs Errors) Errors {
	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return s.byName[topLevel(errs[i].Field)] < s.byName[topLevel(errs[j].Field)]
	})
	return errs
}

// path turns a validator namespace ("CreateRequest.itens[0].nome") into the json
// path relative to T ("itens[0].nome"). Embedded struct names are dropped.
func (s *StructSchema[T]) path(namespace string) string {
	_, rest, _ := strings.Cut(namespace, ".")
	for {
		head, tail, ok := strings.Cut(rest, ".")
		if !ok || !s.embedded[head] {
			return rest
		}
		rest = tail
	}
}

// topLevel returns the field of T a path starts with
func topLevel(path string) string {
	head, _, _ := strings.Cut(path, ".")
	head, _, _ = strings.Cut(head, "[")
	return head
}

func (f fieldSpec) coerce(value any) (any, bool) {
	if f.slice {
		switch items := value.(type) {
		case []any:
			out := make([]any, 0, len(items))
			for _, item := range items {
				c, ok := coerceScalar(f.elem, item)
				if !ok {
					return nil, false
				}
				out = append(out, c)
			}
			return out, true
		case []string:
			out := make([]any, 0, len(items))
			for _, item := range items {
				c, ok := coerceScalar(f.elem, item)
				if !ok {
					return nil, false
				}
				out = append(out, c)
			}
			return out, true
		default:
			c, ok := coerceScalar(f.elem, value)
			if !ok {
				return nil, false
			}
			return []any{c}, true
		}
	}
	return coerceScalar(f.kind, value)
}

func coerceScalar(kind reflect.Kind, value any) (any, bool) {
	switch kind {
	case reflect.String:
		s, ok := value.(string)
		return s, ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := value.(type) {
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return n, err == nil
		case float64:
			if v != math.Trunc(v) {
				return nil, false
			}
			return int64(v), true
		case int, int64:
			return v, true
		}
		return nil, false
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch v := value.(type) {
		case string:
			n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			return n, err == nil
		case float64:
			if v < 0 || v != math.Trunc(v) {
				return nil, false
			}
			return uint64(v), true
		}
		return nil, false
	case reflect.Float32, reflect.Float64:
		switch v := value.(type) {
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			return n, err == nil
		case float64:
			return v, true
		case int, int64:
			return v, true
		}
		return nil, false
	case reflect.Bool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			return b, err == nil
		}
		return nil, false
	}
	// structs, maps and anything else are left to encoding/json
	return value, true
}

func (f fieldSpec) fail(tag, param string, raw any) FieldError {
	return FieldError{
		Field:   f.name,
		Tag:     tag,
		Message: f.message(tag, param),
		Value:   raw,
	}
}

// failNested reports a rule that failed below f, inside a nested struct or a dived slice.
// f's own `msg` tag still applies when it names the rule or has a catch-all.
func (f fieldSpec) failNested(path string, fe validator.FieldError) FieldError {
	message, ok := f.messages[fe.Tag()]
	if !ok {
		message, ok = f.messages["*"]
	}
	if !ok {
		message = DefaultMessage(path, fe.Tag(), fe.Param(), fe.Kind())
	}
	return FieldError{Field: path, Tag: fe.Tag(), Message: message, Value: fe.Value()}
}

func (f fieldSpec) message(tag, param string) string {
	if msg, ok := f.messages[tag]; ok {
		return msg
	}
	if msg, ok := f.messages["*"]; ok {
		return msg
	}
	return DefaultMessage(f.name, tag, param, f.kind)
}

// parseMessages reads `msg:"required=...|min=..."`
func parseMessages(tag string) map[string]string {
	if tag == "" {
		return nil
	}
	messages := make(map[string]string)
	for _, entry := range strings.Split(tag, "|") {
		rule, msg, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		messages[strings.TrimSpace(rule)] = strings.TrimSpace(msg)
	}
	return messages
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
