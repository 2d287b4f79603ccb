package gowrap

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// LuaKey converts a Go identifier to its script-visible key.
// e.g., "Name" → "name", "HomeAddress" → "homeAddress", "ID" → "id"
func LuaKey(goName string) string {
	return strcase.ToLowerCamel(goName)
}

// AccessorName splits a GetX/SetX method name into its prefix and the
// property name X. ok is false for names like "Get" or "Settle".
func AccessorName(method string) (prefix, prop string, ok bool) {
	for _, p := range []string{"Get", "Set"} {
		rest, found := strings.CutPrefix(method, p)
		if !found || rest == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsUpper(r) {
			return p, rest, true
		}
	}
	return "", "", false
}

// AccessPackage returns the import path of the adapter package generated
// next to a source package.
// e.g., ("example.com/app/model", "access") → "example.com/app/model/access"
func AccessPackage(pkgPath, sub string) string {
	return path.Join(pkgPath, sub)
}

// FileStem converts a root name to the stem of its generated Go file.
// e.g., "HTTPServer" → "http_server"
func FileStem(rootName string) string {
	return strcase.ToSnake(rootName)
}
