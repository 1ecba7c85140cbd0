package axon

import (
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// SegmentParser converts a raw path segment into a typed value
type SegmentParser struct {
	TypeName string
	Type     reflect.Type
	Parse    func(raw string) (any, error)
}

// BuiltinParsers contains the parsers selectable from a typed path segment such as {id:int}
var BuiltinParsers = map[string]SegmentParser{
	"int": {
		TypeName: "int",
		Type:     reflect.TypeFor[int](),
		Parse:    func(raw string) (any, error) { return ParseInt(raw) },
	},
	"string": {
		TypeName: "string",
		Type:     reflect.TypeFor[string](),
		Parse:    func(raw string) (any, error) { return ParseString(raw) },
	},
	"float64": {
		TypeName: "float64",
		Type:     reflect.TypeFor[float64](),
		Parse:    func(raw string) (any, error) { return ParseFloat64(raw) },
	},
	"uuid.UUID": {
		TypeName: "uuid.UUID",
		Type:     reflect.TypeFor[uuid.UUID](),
		Parse:    func(raw string) (any, error) { return ParseUUID(raw) },
	},
}

// ParserAliases maps convenient aliases to their full type names
var ParserAliases = map[string]string{
	"UUID":   "uuid.UUID",
	"uuid":   "uuid.UUID",
	"float":  "float64",
	"double": "float64",
}

// ParseInt parses a string parameter to int
func ParseInt(paramValue string) (int, error) {
	return strconv.Atoi(paramValue)
}

// ParseString returns the string parameter as-is (no conversion needed)
func ParseString(paramValue string) (string, error) {
	return paramValue, nil
}

// ParseFloat64 parses a string parameter to float64
func ParseFloat64(paramValue string) (float64, error) {
	return strconv.ParseFloat(paramValue, 64)
}

// ParseUUID parses a string parameter to uuid.UUID
func ParseUUID(paramValue string) (uuid.UUID, error) {
	return uuid.Parse(paramValue)
}

// GetBuiltinParser returns a built-in parser by type name, checking aliases first
func GetBuiltinParser(typeName string) (SegmentParser, bool) {
	parser, exists := BuiltinParsers[ResolveTypeAlias(typeName)]
	return parser, exists
}

// IsBuiltinType checks if a type is a built-in type, including aliases
func IsBuiltinType(typeName string) bool {
	_, exists := GetBuiltinParser(typeName)
	return exists
}

// ResolveTypeAlias resolves a type alias to its actual type name
func ResolveTypeAlias(typeName string) string {
	if actualType, isAlias := ParserAliases[typeName]; isAlias {
		return actualType
	}
	return typeName
}
