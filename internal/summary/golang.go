package summary

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// extractGo fills the result from a Go source file using the standard
// parser. Parse failures fall back to the generic description so a broken
// file still gets summarized.
func extractGo(result *Result, relPath, name, text string) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, text, parser.ParseComments)
	if err != nil {
		result.Summary = describeSource("Go", name, result, "")
		return
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && ast.IsExported(d.Name.Name) {
				result.PublicSymbols = append(result.PublicSymbols, d.Name.Name)
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if ok && ast.IsExported(ts.Name.Name) {
					result.PublicSymbols = append(result.PublicSymbols, ts.Name.Name)
				}
			}
		}
	}

	for _, imp := range file.Imports {
		if dep, err := strconv.Unquote(imp.Path.Value); err == nil {
			result.ImportDeps = append(result.ImportDeps, dep)
		}
	}

	if file.Name.Name == "main" {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if ok && fn.Recv == nil && fn.Name.Name == "main" {
				result.Role = "entrypoint"
				result.Entrypoints = append(result.Entrypoints, Entrypoint{
					Path:       relPath,
					Line:       fset.Position(fn.Pos()).Line,
					Evidence:   "func main()",
					Confidence: 0.95,
				})
				break
			}
		}
	}

	doc := ""
	if file.Doc != nil {
		doc = strings.TrimSpace(strings.SplitN(file.Doc.Text(), "\n", 2)[0])
	}
	result.Summary = describeSource("Go", name, result, doc)
}
