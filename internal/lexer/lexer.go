// Package lexer SPDX-License-Identifier: Apache-2.0
//
// Package lexer defines Dusk's token rules as a participle stateful lexer,
// grounded directly on kanso's grammar/lexer.go (KansoLexer) - the same
// rule shape (comments, identifiers, integers, operators, punctuation,
// whitespace, in that priority order) extended with Dusk's float and string
// literals. There is no keyword rule: keywords lex as Ident tokens and the
// grammar matches them by text.
package lexer

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// DuskLexer tokenizes Dusk source. Rule order matters: participle tries
// each rule in sequence and takes the first match, so longer/more specific
// patterns (float before integer, multi-char operators before single-char
// punctuation) are listed first.
var DuskLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Float", `[0-9]+\.[0-9]+(f32|f64)?`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+(i8|i16|i32|i64|u8|u16|u32|u64)?`, nil},

		{"String", `"(\\.|[^"\\])*"`, nil},

		{"Operator", `(\|\||&&|==|!=|<=|>=|::|[-+*/%<>=!.])`, nil},

		{"Punctuation", `[{}\[\]#:,;()]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
