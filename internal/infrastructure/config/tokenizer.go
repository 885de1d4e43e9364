package config

import (
	"fmt"
	"strings"
)

// token is one whitespace separated field of a rule line.
type token struct {
	Key   string
	Value string
	Named bool
}

// tokenize splits a rule line into fields.
//
// Single quotes take their content literally, double quotes honour \" and \\.
// An unquoted prefix of the form identifier= makes the field a named parameter.
func tokenize(line string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		tok     token
		inToken bool
		quoted  bool
	)

	flush := func() {
		if inToken {
			tok.Value = current.String()
			tokens = append(tokens, tok)
		}
		current.Reset()
		tok = token{}
		inToken = false
		quoted = false
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t':
			flush()

		case r == '\'':
			inToken, quoted = true, true
			end := indexRune(runes, i+1, '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated single quote at column %d", i+1)
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end

		case r == '"':
			inToken, quoted = true, true
			closed := false
			for i++; i < len(runes); i++ {
				c := runes[i]
				if c == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
					current.WriteRune(runes[i+1])
					i++
					continue
				}
				if c == '"' {
					closed = true
					break
				}
				current.WriteRune(c)
			}
			if !closed {
				return nil, fmt.Errorf("unterminated double quote")
			}

		case r == '=' && !quoted && !tok.Named && isIdentifier(current.String()):
			inToken = true
			tok.Named = true
			tok.Key = current.String()
			current.Reset()

		default:
			inToken = true
			current.WriteRune(r)
		}
	}
	flush()

	return tokens, nil
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
