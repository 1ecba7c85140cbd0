package app

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllers_ExportedHandlersAreDocumented(t *testing.T) {
	files := []string{
		"../auth/controller.go",
		"../recipes/controller.go",
		"../users/controller.go",
		"../categories/categories.go",
	}

	for _, path := range files {
		t.Run(filepath.Base(filepath.Dir(path)), func(t *testing.T) {
			file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
			require.NoError(t, err)

			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv == nil || !fn.Name.IsExported() {
					continue
				}
				assert.NotNil(t, fn.Doc, "%s.%s has no doc comment", path, fn.Name.Name)
			}
		})
	}
}
