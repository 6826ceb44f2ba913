package rosapi

import (
	"fmt"
	"strings"
)

// TerminatorKind identifies which reply tag ended a Reply.
type TerminatorKind int

const (
	// TerminatorDone marks a normal, successful reply.
	TerminatorDone TerminatorKind = iota
	// TerminatorTrap marks a recoverable error reply; the connection
	// stays Ready and the caller may issue further requests.
	TerminatorTrap
	// TerminatorFatal marks a connection-terminating error reply.
	TerminatorFatal
)

// Reply tag words (the first word of every sentence).
const (
	tagRe    = "!re"
	tagDone  = "!done"
	tagTrap  = "!trap"
	tagFatal = "!fatal"
)

// Row is a single !re sentence's attributes, name -> value.
type Row map[string]string

// ParsedReply is the caller-visible result of reading one reply: an
// ordered list of rows (one per !re sentence) and the trailer attached to
// the terminating sentence (spec §3).
type ParsedReply struct {
	Rows       []Row
	Trailer    map[string]string
	Terminator TerminatorKind
}

// splitAttr splits an attribute word of the form "=name=value" into its
// name and value. Per spec §9, this is a plain byte scan rather than a
// regex: find the first '=' after the leading one, and take everything
// after it (including further '=' bytes) as the value. ok is false if the
// word is not shaped like "=name=value" (no second '=', or empty name);
// such words are discarded, matching invariant I1.
func splitAttr(word string) (name, value string, ok bool) {
	if len(word) == 0 || word[0] != '=' {
		return "", "", false
	}
	rest := word[1:]
	i := strings.IndexByte(rest, '=')
	if i <= 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// readSentence reads words until the empty-word terminator, returning the
// accumulated words (not including the terminator).
func (f *frame) readSentence() ([]string, error) {
	var words []string
	for {
		w, err := f.readWord()
		if err != nil {
			return nil, err
		}
		if w == "" {
			return words, nil
		}
		words = append(words, w)
	}
}

// readReply reads sentences until a terminator (!done, !trap, or !fatal)
// completes, building rows from !re sentences and a trailer from the
// terminator's own attribute words (spec §4.3).
func (f *frame) readReply() (*ParsedReply, error) {
	reply := &ParsedReply{Trailer: map[string]string{}}

	for {
		words, err := f.readSentence()
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			// An empty sentence (terminator immediately, no tag word) is
			// forward-compatible noise: ignore and keep reading.
			continue
		}

		tag, attrs := words[0], words[1:]
		switch tag {
		case tagRe:
			row := Row{}
			for _, w := range attrs {
				if name, value, ok := splitAttr(w); ok {
					row[name] = value
				}
			}
			reply.Rows = append(reply.Rows, row)

		case tagDone, tagTrap, tagFatal:
			for _, w := range attrs {
				if name, value, ok := splitAttr(w); ok {
					reply.Trailer[name] = value
				}
			}
			switch tag {
			case tagTrap:
				reply.Terminator = TerminatorTrap
			case tagFatal:
				reply.Terminator = TerminatorFatal
			default:
				reply.Terminator = TerminatorDone
			}
			return reply, nil

		default:
			// Unrecognized tag: forward-compatibility, ignored but not fatal.
		}
	}
}

// Error returns a non-nil error only for a !fatal-terminated reply,
// wrapping the trailer's message (if present) so callers that only care
// about "did this fail outright" can use errors.Is(err, ErrProtocol)-style
// checks without inspecting Terminator themselves. !trap replies are
// intentionally NOT turned into an error here — spec §7 requires they
// surface as a typed reply, not an exception.
func (r *ParsedReply) Error() error {
	if r.Terminator != TerminatorFatal {
		return nil
	}
	msg := r.Trailer["message"]
	if msg == "" {
		msg = "connection terminated"
	}
	return fmt.Errorf("%w: %s", ErrProtocol, msg)
}
