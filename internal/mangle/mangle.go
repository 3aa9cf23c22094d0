// Package mangle SPDX-License-Identifier: Apache-2.0
//
// Package mangle computes the deterministic mangled name spec.md's glossary
// defines: "concatenation of enclosing scope chain + unmangled name +
// ordered parameter type fingerprints". Kept as its own tiny package so the
// semantic generator that assigns a Fn/Affix's mangled name and the code
// generator that must reproduce the identical string for `call` never drift
// apart.
package mangle

import "strings"

// Name builds the mangled symbol for a function/affix/method declared in
// scopeChain (root-to-leaf enclosing frame labels, see scope.Context.
// ScopeChain) with the given unmangled name and ordered parameter type
// fingerprints.
func Name(scopeChain []string, unmangledName string, paramTypes []string) string {
	var b strings.Builder
	for _, s := range scopeChain {
		b.WriteString(s)
		b.WriteString("__")
	}
	b.WriteString(unmangledName)
	for _, t := range paramTypes {
		b.WriteString("__")
		b.WriteString(t)
	}
	return b.String()
}
