package dispatch

import (
	"strings"
	"unicode"
)

// Verbs understood by the adapter. Anything else is a command invocation.
const (
	VerbAdd    = "add"
	VerbRemove = "remove"
	VerbRank   = "rank"
	VerbAlias  = "alias"

	aliasAdd    = "add"
	aliasRemove = "remove"
)

// Invocation is a prefixed message split into its verb and the untouched
// remainder.
type Invocation struct {
	Verb string
	Rest string
}

// Parse strips prefix and splits off the first token. ok is false when the
// message is not addressed to the bot.
func Parse(prefix, content string) (Invocation, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Invocation{}, false
	}
	verb, rest := SplitToken(content[len(prefix):])
	if verb == "" {
		return Invocation{}, false
	}
	return Invocation{Verb: verb, Rest: rest}, true
}

// SplitToken returns the first whitespace-delimited token of s and everything
// after the whitespace that follows it. Inner whitespace and newlines of the
// remainder are preserved.
func SplitToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimLeftFunc(s[end:], unicode.IsSpace)
}
