// Package annotations parses the route declarations controllers use to describe their handlers.
//
// A declaration is a verb, a path and optional flags:
//
//	GET /{id:uuid} -Roles=ADMIN,DEFAULT -Summary="Busca uma receita"
//	POST /login -Public
package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	axonErrors "github.com/toyz/receitas/internal/errors"
)

// Declaration is the grammar root of a route declaration
type Declaration struct {
	Verb  string  `parser:"@Ident"`
	Path  string  `parser:"@Path"`
	Flags []*Flag `parser:"@@*"`
}

// Flag is a single -Name or -Name=value item
type Flag struct {
	Pos   lexer.Position
	Name  string     `parser:"Dash @Ident"`
	Value *FlagValue `parser:"( Equals @@ )?"`
}

// FlagValue is either a quoted string or a comma separated identifier list
type FlagValue struct {
	String *string  `parser:"  @String"`
	List   []string `parser:"| @Ident ( Comma @Ident )*"`
}

// Route is a validated route declaration
type Route struct {
	Verb          string
	Path          string
	Public        bool
	Authenticated bool
	Roles         []string
	Summary       string
	Raw           string
}

// HasAccessFlag reports whether the declaration chose an access level explicitly
func (r *Route) HasAccessFlag() bool {
	return r.Public || r.Authenticated || len(r.Roles) > 0
}

var verbs = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

var declarationParser = participle.MustBuild[Declaration](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Path", Pattern: `/[^\s]*`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// ParseRoute parses and validates a route declaration
func ParseRoute(declaration string) (*Route, error) {
	decl, err := declarationParser.ParseString("", declaration)
	if err != nil {
		pos := 0
		var perr participle.Error
		if errors.As(err, &perr) {
			pos = perr.Position().Offset
		}
		return nil, axonErrors.NewSyntaxError(declaration, err.Error(), pos)
	}

	route := &Route{
		Verb: strings.ToUpper(decl.Verb),
		Path: decl.Path,
		Raw:  declaration,
	}
	if !verbs[route.Verb] {
		return nil, axonErrors.NewSyntaxError(declaration, fmt.Sprintf("unsupported verb %q", decl.Verb), 0)
	}

	seen := make(map[string]bool)
	for _, flag := range decl.Flags {
		name := strings.ToLower(flag.Name)
		if seen[name] {
			return nil, axonErrors.NewSyntaxError(declaration, fmt.Sprintf("flag -%s given twice", flag.Name), flag.Pos.Offset)
		}
		seen[name] = true

		if err := route.apply(name, flag); err != nil {
			return nil, axonErrors.NewSyntaxError(declaration, err.Error(), flag.Pos.Offset)
		}
	}

	if route.Public && (route.Authenticated || len(route.Roles) > 0) {
		return nil, axonErrors.NewSyntaxError(declaration, "-Public cannot be combined with -Roles or -Authenticated", 0)
	}

	return route, nil
}

// MustParseRoute is like ParseRoute but panics on error
func MustParseRoute(declaration string) *Route {
	route, err := ParseRoute(declaration)
	if err != nil {
		panic(err)
	}
	return route
}

func (r *Route) apply(name string, flag *Flag) error {
	switch name {
	case "public", "authenticated":
		if flag.Value != nil {
			return fmt.Errorf("flag -%s does not take a value", flag.Name)
		}
		if name == "public" {
			r.Public = true
		} else {
			r.Authenticated = true
		}
	case "roles":
		if flag.Value == nil || len(flag.Value.List) == 0 {
			return fmt.Errorf("flag -Roles requires a comma separated list")
		}
		for _, role := range flag.Value.List {
			r.Roles = append(r.Roles, strings.ToUpper(role))
		}
	case "summary":
		if flag.Value == nil || flag.Value.String == nil {
			return fmt.Errorf(`flag -Summary requires a quoted value`)
		}
		r.Summary = *flag.Value.String
	default:
		return fmt.Errorf("unknown flag -%s", flag.Name)
	}
	return nil
}
