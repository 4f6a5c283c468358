package dialect

import (
	"strings"
	"unicode"
)

type tokenOp int

const (
	opOptional tokenOp = iota
	opRequired
	opExcluded
)

// booleanToken is one operand of a boolean-mode search string such as
// `+apple -"green pear" ban*`
type booleanToken struct {
	text   string
	op     tokenOp
	prefix bool
	phrase bool
}

// parseBoolean splits raw input into boolean-mode tokens. Operators other
// than + and - as well as a trailing * are stripped from the token text.
func parseBoolean(raw string) []booleanToken {
	var (
		tokens []booleanToken
		runes  = []rune(raw)
	)

	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		tok := booleanToken{}
		switch runes[i] {
		case '+':
			tok.op = opRequired
			i++
		case '-':
			tok.op = opExcluded
			i++
		}

		var text string
		if i < len(runes) && runes[i] == '"' {
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			text = string(runes[i+1 : end])
			tok.phrase = true
			i = end + 1
		} else {
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) {
				i++
			}
			text = string(runes[start:i])
			if strings.HasSuffix(text, "*") {
				tok.prefix = true
			}
		}

		tok.text = strings.TrimSpace(strings.Map(dropOperator, text))
		if tok.text != "" {
			tokens = append(tokens, tok)
		}
	}

	return tokens
}

func dropOperator(r rune) rune {
	switch r {
	case '+', '-', '*', '"', '<', '>', '~', '(', ')', '@':
		return -1
	}
	return r
}

// tsQuery renders tokens as a to_tsquery expression. Required and excluded
// tokens are and-ed together with the group of optional tokens.
func tsQuery(tokens []booleanToken) string {
	var (
		parts    []string
		optional []string
	)

	for _, tok := range tokens {
		lexeme := tsLexeme(tok)
		if lexeme == "" {
			continue
		}
		switch tok.op {
		case opRequired:
			parts = append(parts, lexeme)
		case opExcluded:
			parts = append(parts, "!"+lexeme)
		default:
			optional = append(optional, lexeme)
		}
	}

	switch len(optional) {
	case 0:
	case 1:
		parts = append(parts, optional[0])
	default:
		parts = append(parts, "("+strings.Join(optional, " | ")+")")
	}

	return strings.Join(parts, " & ")
}

func tsLexeme(tok booleanToken) string {
	words := strings.FieldsFunc(tok.text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`&|!:'\`, r)
	})
	if len(words) == 0 {
		return ""
	}

	if len(words) > 1 {
		return "(" + strings.Join(words, " <-> ") + ")"
	}
	if tok.prefix {
		return words[0] + ":*"
	}
	return words[0]
}
