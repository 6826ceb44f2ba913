package rosapi

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplitAttr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		word      string
		wantName  string
		wantValue string
		wantOK    bool
	}{
		{"simple", "=name=admin", "name", "admin", true},
		{"empty value", "=comment=", "comment", "", true},
		{"value contains equals", "=ret=ab=cd", "ret", "ab=cd", true},
		{"not an attribute word", "!done", "", "", false},
		{"no second equals", "=name", "", "", false},
		{"empty name", "==value", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, value, ok := splitAttr(tt.word)
			if ok != tt.wantOK {
				t.Fatalf("splitAttr(%q) ok = %v, want %v", tt.word, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if name != tt.wantName || value != tt.wantValue {
				t.Fatalf("splitAttr(%q) = (%q, %q), want (%q, %q)", tt.word, name, value, tt.wantName, tt.wantValue)
			}
		})
	}
}

func writeRawSentences(t *testing.T, f *frame, sentences [][]string) {
	t.Helper()
	for _, words := range sentences {
		if err := f.writeSentence(words); err != nil {
			t.Fatalf("writeSentence: %v", err)
		}
	}
}

func TestReadReplyInterfaceListing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{
		{"!re", "=name=ether1", "=type=ether"},
		{"!re", "=name=ether2", "=type=ether"},
		{"!done"},
	})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if reply.Terminator != TerminatorDone {
		t.Fatalf("terminator = %v, want TerminatorDone", reply.Terminator)
	}
	if len(reply.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(reply.Rows))
	}
	if reply.Rows[0]["name"] != "ether1" || reply.Rows[1]["name"] != "ether2" {
		t.Fatalf("unexpected rows: %+v", reply.Rows)
	}
}

func TestReadReplyZeroRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{{"!done"}})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if len(reply.Rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(reply.Rows))
	}
}

func TestReadReplyDuplicateKeyOverwrites(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{
		{"!re", "=name=first", "=name=second"},
		{"!done"},
	})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if reply.Rows[0]["name"] != "second" {
		t.Fatalf("got %q, want last value to win", reply.Rows[0]["name"])
	}
}

func TestReadReplyTrapIsNotFatal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{
		{"!trap", "=message=no such item"},
	})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if reply.Terminator != TerminatorTrap {
		t.Fatalf("terminator = %v, want TerminatorTrap", reply.Terminator)
	}
	if reply.Error() != nil {
		t.Fatalf("Error() = %v, want nil for a trap reply", reply.Error())
	}
	if reply.Trailer["message"] != "no such item" {
		t.Fatalf("trailer = %+v", reply.Trailer)
	}
}

func TestReadReplyFatalIsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{
		{"!fatal", "=message=session terminated on request"},
	})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if reply.Terminator != TerminatorFatal {
		t.Fatalf("terminator = %v, want TerminatorFatal", reply.Terminator)
	}
	if !errors.Is(reply.Error(), ErrProtocol) {
		t.Fatalf("Error() = %v, want wrapping ErrProtocol", reply.Error())
	}
}

func TestReadReplyUnrecognizedTagIgnored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newFrame(&buf)
	writeRawSentences(t, f, [][]string{
		{"!future", "=x=y"},
		{"!done"},
	})

	reply, err := f.readReply()
	if err != nil {
		t.Fatalf("readReply: %v", err)
	}
	if reply.Terminator != TerminatorDone {
		t.Fatalf("terminator = %v, want TerminatorDone", reply.Terminator)
	}
	if len(reply.Rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(reply.Rows))
	}
}
