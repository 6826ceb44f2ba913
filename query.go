package rosapi

import "strings"

// Query is the query-assembler contract (spec §4.7/§6, component C4):
// anything that can produce an ordered, non-empty sequence of words,
// first being the command path, satisfies it. The core only depends on
// this interface; Builder below is this package's default implementation,
// shipped so the repo runs end-to-end.
type Query interface {
	Words() []string
}

// Attr is a single "=name=value" attribute to attach to a command.
type Attr struct {
	Name  string
	Value string
}

// NewAttr constructs an Attr.
func NewAttr(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Builder assembles a command path plus attribute and API words into the
// word sequence Client.Run sends.
type Builder struct {
	path  string
	words []string
}

// Command starts a Builder for the given command path (e.g.
// "/interface/print"). attrs become "=name=value" words in the order
// given.
func Command(path string, attrs ...Attr) *Builder {
	b := &Builder{path: path, words: []string{path}}
	for _, a := range attrs {
		b.words = append(b.words, "="+a.Name+"="+a.Value)
	}
	return b
}

// Query appends a "?name=value" API word, RouterOS's filter/query
// modifier syntax (e.g. "?disabled=false").
func (b *Builder) Query(name, value string) *Builder {
	b.words = append(b.words, "?"+name+"="+value)
	return b
}

// Proplist appends a "=.proplist=a,b,c" word restricting which
// properties the server returns.
func (b *Builder) Proplist(names ...string) *Builder {
	if len(names) == 0 {
		return b
	}
	b.words = append(b.words, "=.proplist="+strings.Join(names, ","))
	return b
}

// Words implements Query.
func (b *Builder) Words() []string {
	return append([]string(nil), b.words...)
}

// Bind substitutes "$name" placeholders with values from args. Every word
// is scanned, the command path included, and a placeholder is replaced
// wherever it occurs in the word; words without a matching placeholder
// are left untouched. Unlike a SQL placeholder scheme where arguments
// are positional, RouterOS attributes are already named, so binding here
// is name -> name substitution rather than $1/$2 ordinal substitution.
func Bind(words []string, args map[string]string) []string {
	if len(args) == 0 {
		return words
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = bindWord(w, args)
	}
	return out
}

func bindWord(word string, args map[string]string) string {
	if !strings.Contains(word, "$") {
		return word
	}
	for name, value := range args {
		word = strings.ReplaceAll(word, "$"+name, value)
	}
	return word
}

// secretAttrs lists attribute names whose values Redact replaces.
var secretAttrs = map[string]bool{
	"password": true,
	"response": true,
}

// Redact returns a copy of words with secret attribute values (password,
// response) replaced by "***", safe to pass to a logger. Grounded on the
// same "scan and rewrite without touching structure" shape as query
// normalization, adapted here from grouping (scrub literals so similar
// queries compare equal) to safety (scrub secrets so logs don't leak
// credentials).
func Redact(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		name, _, ok := splitAttr(w)
		if ok && secretAttrs[name] {
			out[i] = "=" + name + "=***"
			continue
		}
		out[i] = w
	}
	return out
}
