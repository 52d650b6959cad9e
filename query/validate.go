package query

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/poiesic/nlqengine/core"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenQuoted
	tokenLiteral
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
}

// word returns the upper-cased text of a bare word, or "" for other tokens.
func (t token) word() string {
	if t.kind != tokenWord {
		return ""
	}
	return strings.ToUpper(t.text)
}

func (t token) isIdent() bool {
	return t.kind == tokenQuoted || (t.kind == tokenWord && !reserved[strings.ToUpper(t.text)])
}

func (t token) is(punct string) bool {
	return t.kind == tokenPunct && t.text == punct
}

// writeKeywords may not appear anywhere in a read-only statement.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "UPSERT": true,
	"DROP": true, "ALTER": true, "CREATE": true, "TRUNCATE": true,
	"ATTACH": true, "DETACH": true, "PRAGMA": true, "VACUUM": true,
	"COPY": true, "EXPORT": true, "IMPORT": true, "INSTALL": true, "LOAD": true,
	"GRANT": true, "REVOKE": true, "SET": true, "CALL": true, "CHECKPOINT": true,
	"REPLACE": true,
}

// tableFunctions may appear as a table source when tables are checked.
// File readers and pragma functions are not listed.
var tableFunctions = map[string]bool{
	"generate_series": true, "range": true, "unnest": true,
	"json_each": true, "json_tree": true,
}

// clauseKeywords end a FROM list.
var clauseKeywords = map[string]bool{
	"WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "INTERSECT": true, "EXCEPT": true,
	"WINDOW": true, "QUALIFY": true, "FETCH": true, "SELECT": true,
}

// reserved words end a table reference and are never aliases.
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "GROUP": true, "ORDER": true,
	"BY": true, "HAVING": true, "LIMIT": true, "OFFSET": true, "UNION": true,
	"INTERSECT": true, "EXCEPT": true, "JOIN": true, "INNER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true, "NATURAL": true,
	"ON": true, "USING": true, "AS": true, "WITH": true, "WINDOW": true,
	"QUALIFY": true, "AND": true, "OR": true, "NOT": true, "LATERAL": true,
	"RECURSIVE": true, "VALUES": true, "FETCH": true, "POSITIONAL": true,
	"ASOF": true, "ANTI": true, "SEMI": true,
}

// tokenize splits a statement into words, quoted identifiers, literals and
// punctuation. Comments are dropped and string literal contents discarded.
func tokenize(statement string) ([]token, error) {
	var tokens []token
	runes := []rune(statement)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			j := i + 2
			for j+1 < len(runes) && (runes[j] != '*' || runes[j+1] != '/') {
				j++
			}
			if j+1 >= len(runes) {
				return nil, fmt.Errorf("unterminated comment")
			}
			i = j + 2
		case r == '\'':
			j, err := closeQuote(runes, i, '\'')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenLiteral})
			i = j
		case r == '"' || r == '`':
			j, err := closeQuote(runes, i, r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenQuoted, text: unquote(runes[i+1:j-1], r)})
			i = j
		case r == '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated identifier")
			}
			tokens = append(tokens, token{kind: tokenQuoted, text: string(runes[i+1 : j])})
			i = j + 1
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '$') {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || unicode.IsLetter(runes[j]) || runes[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: tokenLiteral})
			i = j
		default:
			tokens = append(tokens, token{kind: tokenPunct, text: string(r)})
			i++
		}
	}
	return tokens, nil
}

// closeQuote returns the index just past the quote that closes the one at
// start. A doubled quote is an escaped quote.
func closeQuote(runes []rune, start int, quote rune) (int, error) {
	for j := start + 1; j < len(runes); j++ {
		if runes[j] != quote {
			continue
		}
		if j+1 < len(runes) && runes[j+1] == quote {
			j++
			continue
		}
		return j + 1, nil
	}
	return 0, fmt.Errorf("unterminated quoted text")
}

func unquote(body []rune, quote rune) string {
	q := string(quote)
	return strings.ReplaceAll(string(body), q+q, q)
}

// Validate checks that statement is a single read-only SELECT or WITH query.
// When snapshot is non-nil, every table read after FROM or JOIN must exist
// in it; names defined by a WITH clause are allowed. Table names compare
// case-insensitively. Rejections are generation errors.
func Validate(statement string, snapshot *core.SchemaSnapshot) error {
	tokens, err := tokenize(statement)
	if err != nil {
		return core.Wrap(err, core.KindGeneration, "generated query cannot be parsed")
	}

	// Drop trailing semicolons
	for len(tokens) > 0 && tokens[len(tokens)-1].is(";") {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return core.Wrap(ErrEmptyStatement, core.KindGeneration, "generated query rejected")
	}

	for i, tok := range tokens {
		if tok.is(";") {
			return core.Wrap(ErrMultipleStatements, core.KindGeneration, "generated query rejected")
		}
		// replace(s, from, to) and SELECT * REPLACE (...) are reads
		if tok.word() == "REPLACE" && i+1 < len(tokens) && tokens[i+1].is("(") {
			continue
		}
		if writeKeywords[tok.word()] {
			return core.Wrap(fmt.Errorf("%w: found %s", ErrNotReadOnly, tok.word()), core.KindGeneration, "generated query rejected")
		}
	}

	first := tokens[0]
	for n := 0; first.is("(") && n+1 < len(tokens); n++ {
		first = tokens[n+1]
	}
	if first.word() != "SELECT" && first.word() != "WITH" {
		return core.Wrap(ErrNotReadOnly, core.KindGeneration, "generated query rejected")
	}

	if snapshot == nil {
		return nil
	}

	known := make(map[string]bool, len(snapshot.Tables))
	for name := range snapshot.Tables {
		known[strings.ToLower(name)] = true
	}
	for _, name := range cteNames(tokens) {
		known[strings.ToLower(name)] = true
	}

	names, err := referencedTables(tokens)
	if err != nil {
		return core.Wrap(err, core.KindGeneration, "generated query rejected")
	}
	for _, name := range names {
		if !known[strings.ToLower(name)] {
			return core.Wrap(fmt.Errorf("%w: %s", ErrUnknownTable, name), core.KindGeneration, "generated query rejected")
		}
	}
	return nil
}

// cteNames collects names defined as `name AS (` or `name (cols) AS (`.
func cteNames(tokens []token) []string {
	var names []string
	for i := 0; i+2 < len(tokens); i++ {
		if !tokens[i].isIdent() {
			continue
		}
		j := i + 1
		if tokens[j].is("(") {
			depth := 0
			for ; j < len(tokens); j++ {
				if tokens[j].is("(") {
					depth++
				} else if tokens[j].is(")") {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			j++
		}
		if j+1 < len(tokens) && tokens[j].word() == "AS" && tokens[j+1].is("(") {
			names = append(names, tokens[i].text)
		}
	}
	return names
}

// scope tracks one parenthesis depth while scanning for table sources.
type scope struct {
	query  bool // the depth holds a query, not function arguments
	list   bool // inside a FROM list, so a comma starts another source
	expect bool // the next token is a table source
}

// referencedTables returns the names of tables read after FROM or JOIN,
// including every source of a comma list and sources inside subqueries.
// Schema qualifiers are dropped. FROM inside a function call, as in
// EXTRACT(YEAR FROM d), is not a table reference. A string literal source
// or a table function outside tableFunctions is ErrUnsupportedSource.
func referencedTables(tokens []token) ([]string, error) {
	var names []string
	scopes := []*scope{{query: true}}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		top := scopes[len(scopes)-1]

		if tok.is(")") {
			if len(scopes) > 1 {
				scopes = scopes[:len(scopes)-1]
			}
			continue
		}

		if top.expect {
			top.expect = false
			switch {
			case tok.word() == "LATERAL":
				top.expect = true
				continue
			case tok.kind == tokenLiteral:
				return nil, fmt.Errorf("%w: literal after FROM", ErrUnsupportedSource)
			case tok.is("("):
				if startsQuery(tokens, i+1) {
					scopes = append(scopes, &scope{query: true})
				} else {
					// (a JOIN b)
					scopes = append(scopes, &scope{query: true, list: true, expect: true})
				}
				continue
			case tok.isIdent():
				name, next := qualifiedName(tokens, i)
				if next < len(tokens) && tokens[next].is("(") {
					if !tableFunctions[strings.ToLower(name)] {
						return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, name)
					}
				} else {
					names = append(names, name)
				}
				i = next - 1
				continue
			}
		}

		switch {
		case tok.is("("):
			scopes = append(scopes, &scope{query: startsQuery(tokens, i+1)})
		case !top.query:
		case tok.word() == "FROM":
			top.list, top.expect = true, true
		case tok.word() == "JOIN":
			top.expect = true
		case tok.is(",") && top.list:
			top.expect = true
		case clauseKeywords[tok.word()]:
			top.list = false
		}
	}
	return names, nil
}

func startsQuery(tokens []token, i int) bool {
	if i >= len(tokens) {
		return false
	}
	switch tokens[i].word() {
	case "SELECT", "WITH", "VALUES":
		return true
	}
	return false
}

// qualifiedName reads schema.table or catalog.schema.table at i and returns
// the last part with the index just past it.
func qualifiedName(tokens []token, i int) (string, int) {
	name := tokens[i].text
	for i+2 < len(tokens) && tokens[i+1].is(".") && tokens[i+2].isIdent() {
		i += 2
		name = tokens[i].text
	}
	return name, i + 1
}
