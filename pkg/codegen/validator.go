package codegen

// In-memory validation of generated adapter source using go/parser.

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ValidationError is a problem found in generated source, with position info.
type ValidationError struct {
	Line     int
	Column   int
	Function string // function or method containing the error
	Receiver string // receiver type for methods
	Message  string
}

// CodeValidator checks generated Go source before it is written.
type CodeValidator struct {
	fset     *token.FileSet
	filename string
}

// NewCodeValidator creates a validator for the given filename (used in error messages)
func NewCodeValidator(filename string) *CodeValidator {
	return &CodeValidator{filename: filename}
}

// Validate parses source and checks that every symbol in want is declared
// and that nothing is declared twice. Methods are named Recv.Method.
func (cv *CodeValidator) Validate(source string, want ...string) []ValidationError {
	cv.fset = token.NewFileSet()

	file, err := parser.ParseFile(cv.fset, cv.filename, source, parser.AllErrors|parser.ParseComments)
	if err != nil {
		var funcMap map[int]*functionInfo
		if file != nil {
			funcMap = cv.buildFunctionMap(file)
		}
		return cv.parseErrors(err, funcMap)
	}

	var problems []ValidationError
	if !ast.IsGenerated(file) {
		problems = append(problems, ValidationError{Line: 1, Column: 1, Function: "<package>",
			Message: "missing generated-code header"})
	}

	funcMap := cv.buildFunctionMap(file)
	declared := make(map[string]token.Pos)
	for _, decl := range file.Decls {
		for name, pos := range declNames(decl) {
			if name == "_" {
				continue
			}
			if prev, ok := declared[name]; ok {
				p := cv.fset.Position(pos)
				ve := ValidationError{Line: p.Line, Column: p.Column,
					Message: name + " redeclared; previous declaration at line " +
						strconv.Itoa(cv.fset.Position(prev).Line)}
				if fn := funcMap[p.Line]; fn != nil {
					ve.Function, ve.Receiver = fn.Name, fn.Receiver
				}
				problems = append(problems, ve)
				continue
			}
			declared[name] = pos
		}
	}

	for _, name := range want {
		if _, ok := declared[name]; !ok {
			problems = append(problems, ValidationError{Line: 1, Column: 1, Function: "<package>",
				Message: name + " is not declared"})
		}
	}
	return problems
}

// Expected lists the symbols an adapter file must declare.
func Expected(ad *Adapter) []string {
	access := ad.Root.AccessName()
	want := []string{
		access,
		"New" + access,
		access + ".LuaType",
		access + ".Unwrap",
		access + ".Get",
		access + ".Set",
	}
	if ad.Root.Parent != nil {
		want = append(want, access+".LuaParent")
	}
	for _, m := range ad.Methods {
		want = append(want, access+"."+m.Name)
	}
	if ad.Factory {
		want = append(want, ad.Root.FactoryName())
	}
	for _, w := range ad.Wrappers {
		want = append(want, w.Name)
	}
	return want
}

// declNames yields the package-level names a declaration introduces, with
// methods qualified by their receiver type.
func declNames(decl ast.Decl) map[string]token.Pos {
	names := make(map[string]token.Pos)
	switch d := decl.(type) {
	case *ast.FuncDecl:
		name := d.Name.Name
		if d.Recv != nil && len(d.Recv.List) > 0 {
			name = strings.TrimPrefix(extractReceiverType(d.Recv.List[0].Type), "*") + "." + name
		}
		names[name] = d.Name.Pos()
	case *ast.GenDecl:
		for _, spec := range d.Specs {
			switch s := spec.(type) {
			case *ast.TypeSpec:
				names[s.Name.Name] = s.Name.Pos()
			case *ast.ValueSpec:
				for _, id := range s.Names {
					names[id.Name] = id.Pos()
				}
			}
		}
	}
	return names
}

type functionInfo struct {
	Name      string
	Receiver  string
	StartLine int
	EndLine   int
}

// parseErrors splits a scanner.ErrorList into positioned errors, attributed
// to the function they fall in when the partial AST allows it.
func (cv *CodeValidator) parseErrors(err error, funcMap map[int]*functionInfo) []ValidationError {
	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return []ValidationError{{Line: 1, Column: 1, Message: err.Error()}}
	}
	var out []ValidationError
	for _, e := range list {
		ve := ValidationError{Line: e.Pos.Line, Column: e.Pos.Column, Message: e.Msg}
		if fn := funcMap[e.Pos.Line]; fn != nil {
			ve.Function, ve.Receiver = fn.Name, fn.Receiver
		}
		out = append(out, ve)
	}
	return out
}

func (cv *CodeValidator) buildFunctionMap(file *ast.File) map[int]*functionInfo {
	funcMap := make(map[int]*functionInfo)

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		startPos := cv.fset.Position(fn.Pos())
		endPos := cv.fset.Position(fn.End())

		info := &functionInfo{
			Name:      fn.Name.Name,
			StartLine: startPos.Line,
			EndLine:   endPos.Line,
		}
		if fn.Recv != nil && len(fn.Recv.List) > 0 {
			info.Receiver = extractReceiverType(fn.Recv.List[0].Type)
		}

		// Map each line in the function to this function info
		for line := startPos.Line; line <= endPos.Line; line++ {
			funcMap[line] = info
		}
	}

	return funcMap
}

func extractReceiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return "*" + ident.Name
		}
	}
	return ""
}

// FormatValidationErrors returns a human-readable error report
func FormatValidationErrors(errors []ValidationError, filename string) string {
	if len(errors) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, err := range errors {
		sb.WriteString("  " + filename + ":" + strconv.Itoa(err.Line) + ": ")
		if err.Function != "" && err.Function != "<package>" {
			if err.Receiver != "" {
				sb.WriteString("(" + err.Receiver + ")." + err.Function)
			} else {
				sb.WriteString(err.Function)
			}
			sb.WriteString(": ")
		}
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}

	return sb.String()
}
