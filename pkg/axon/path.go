package axon

import (
	"strings"
)

// AxonPathPartType represents the type of path part
type AxonPathPartType int

const (
	StaticPart AxonPathPartType = iota
	ParameterPart
	WildcardPart
)

// AxonPathPart represents a single part of an Axon path
type AxonPathPart struct {
	Type      AxonPathPartType
	Value     string // For static parts: the literal text, for parameters: the parameter name
	ParamType string // For parameters: the type (e.g., "int", "uuid"), empty for untyped
}

// AxonPath represents a route path. Both `/recipes/{id:uuid}` and `/recipes/:id` are accepted.
type AxonPath string

// Raw returns the original path
func (p AxonPath) Raw() string {
	return string(p)
}

// Parts parses the path and returns the individual parts
func (p AxonPath) Parts() []AxonPathPart {
	path := string(p)
	var parts []AxonPathPart

	i := 0
	for i < len(path) {
		switch {
		case path[i] == '{':
			j := strings.IndexByte(path[i:], '}')
			if j == -1 {
				// Malformed, treat the rest as static
				parts = appendStatic(parts, path[i:])
				i = len(path)
				continue
			}
			parts = append(parts, braceParam(path[i+1:i+j]))
			i += j + 1
		case path[i] == ':' && (i == 0 || path[i-1] == '/'):
			j := i + 1
			for j < len(path) && path[j] != '/' {
				j++
			}
			parts = append(parts, AxonPathPart{Type: ParameterPart, Value: path[i+1 : j]})
			i = j
		case path[i] == '*' && (i == 0 || path[i-1] == '/'):
			parts = append(parts, AxonPathPart{Type: WildcardPart, Value: "*"})
			i++
		default:
			start := i
			for i < len(path) && path[i] != '{' && !(path[i] == ':' && path[i-1] == '/') && !(path[i] == '*' && path[i-1] == '/') {
				i++
			}
			parts = appendStatic(parts, path[start:i])
		}
	}

	return parts
}

// Params returns the parameter parts in order of appearance
func (p AxonPath) Params() []AxonPathPart {
	var params []AxonPathPart
	for _, part := range p.Parts() {
		if part.Type == ParameterPart {
			params = append(params, part)
		}
	}
	return params
}

// Param looks up a parameter part by name
func (p AxonPath) Param(name string) (AxonPathPart, bool) {
	for _, part := range p.Params() {
		if part.Value == name {
			return part, true
		}
	}
	return AxonPathPart{}, false
}

// Join appends a sub path to p, collapsing duplicate slashes and trimming a trailing one
func (p AxonPath) Join(sub string) AxonPath {
	joined := strings.TrimRight(string(p), "/") + "/" + strings.TrimLeft(sub, "/")
	if len(joined) > 1 {
		joined = strings.TrimRight(joined, "/")
	}
	if joined == "" {
		joined = "/"
	}
	return AxonPath(joined)
}

// NewAxonPath creates a new AxonPath from a string
func NewAxonPath(path string) AxonPath {
	return AxonPath(path)
}

func braceParam(content string) AxonPathPart {
	if content == "*" {
		return AxonPathPart{Type: WildcardPart, Value: "*"}
	}
	name, paramType, _ := strings.Cut(content, ":")
	return AxonPathPart{Type: ParameterPart, Value: name, ParamType: paramType}
}

func appendStatic(parts []AxonPathPart, value string) []AxonPathPart {
	if n := len(parts); n > 0 && parts[n-1].Type == StaticPart {
		parts[n-1].Value += value
		return parts
	}
	return append(parts, AxonPathPart{Type: StaticPart, Value: value})
}
