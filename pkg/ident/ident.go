// Package ident implements the naming rules shared by every identifier table
// in the interpreter.
//
// BASIC identifiers are case-insensitive across the whole language: variables,
// functions and module names. Every insertion into and lookup from a name table
// goes through Canonical so that "Total", "TOTAL" and "total" address the same
// binding.
//
// Folding is full Unicode case folding (golang.org/x/text/cases), so spellings
// that fold alike are one identifier: "Straße" and "STRASSE" both become
// "strasse".
package ident

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// casers holds Fold casers for reuse. A cases.Caser keeps internal state and
// must not be shared between goroutines.
var casers = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// Canonical returns the canonical (case-folded) spelling of name.
func Canonical(name string) string {
	if isASCII(name) {
		return foldASCII(name)
	}
	c := casers.Get().(*cases.Caser)
	defer casers.Put(c)
	return c.String(name)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// foldASCII lower-cases s, returning it unchanged when it already is.
func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			return strings.ToLower(s)
		}
	}
	return s
}

// Equal reports whether a and b name the same identifier.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// Split separates a qualified name at its last dot.
//
//	Split("foo.bar.baz") // "foo.bar", "baz"
//	Split("baz")         // "", "baz"
func Split(name string) (pkg, id string) {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

// IsQualified reports whether name carries a module prefix.
func IsQualified(name string) bool {
	pkg, _ := Split(name)
	return pkg != ""
}
