// Package highlight renders parsed RouterOS API sentences with ANSI
// terminal styling, for the CLI's -verbose output and the TUI's reply
// pane.
package highlight

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	tagStyleOK    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))  // !re, !done
	tagStyleTrap  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")) // !trap
	tagStyleFatal = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")) // !fatal
	nameStyle     = lipgloss.NewStyle().Faint(true)
)

// tagStyle picks a style for a reply tag by kind.
func tagStyle(tag string) lipgloss.Style {
	switch tag {
	case "!trap":
		return tagStyleTrap
	case "!fatal":
		return tagStyleFatal
	default:
		return tagStyleOK
	}
}

// Sentence renders a reply tag and its attribute map for terminal
// display: the tag colored by kind, attribute names dim, values plain.
// Attributes are printed in sorted key order for stable output.
func Sentence(tag string, attrs map[string]string) string {
	var b strings.Builder
	b.WriteString(tagStyle(tag).Render(tag))

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, " %s=%s", nameStyle.Render(name), attrs[name])
	}
	return b.String()
}

var (
	pathLexer     chroma.Lexer
	pathFormatter chroma.Formatter
	pathStyle     *chroma.Style
)

func init() {
	// RouterOS command paths ("/interface/ethernet/print") and "?name=value"
	// filter words read like INI key/section syntax; chroma ships an INI
	// lexer we reuse rather than writing a bespoke one (see DESIGN.md).
	pathLexer = lexers.Get("ini")
	pathFormatter = formatters.Get("terminal256")
	pathStyle = styles.Get("monokai")
}

// Command renders a command path for terminal display. On any tokenizer
// error the raw path is returned unchanged.
func Command(path string) string {
	if path == "" || pathLexer == nil {
		return path
	}

	iterator, err := pathLexer.Tokenise(nil, path)
	if err != nil {
		return path
	}

	var buf bytes.Buffer
	if err := pathFormatter.Format(&buf, pathStyle, iterator); err != nil {
		return path
	}

	return strings.TrimRight(buf.String(), "\n")
}
