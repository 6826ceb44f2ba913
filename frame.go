package rosapi

import (
	"bufio"
	"fmt"
	"io"
)

// frame wraps a transport with the buffered reader/writer the word-level
// codec needs, the same shape as a bare net.Conn wrapped for buffered
// protocol I/O elsewhere in the wire-protocol example pack.
type frame struct {
	r *bufio.Reader
	w *bufio.Writer
}

func newFrame(rw io.ReadWriter) *frame {
	return &frame{
		r: bufio.NewReader(rw),
		w: bufio.NewWriter(rw),
	}
}

// writeWord emits encode(len(word)) followed by the raw bytes of word.
// Short writes are retried until the full buffer is flushed or the
// transport errors (bufio.Writer.Write already loops internally; Flush
// forces the bytes onto the wire).
func (f *frame) writeWord(word string) error {
	prefix, err := encodeLength(uint64(len(word)))
	if err != nil {
		return err
	}
	if _, err := f.w.Write(prefix); err != nil {
		return fmt.Errorf("%w: write length prefix: %v", ErrTransport, err)
	}
	if len(word) > 0 {
		if _, err := f.w.Write([]byte(word)); err != nil {
			return fmt.Errorf("%w: write word: %v", ErrTransport, err)
		}
	}
	return nil
}

// writeSentence writes each word in order, then a single zero byte
// terminator (the empty word).
func (f *frame) writeSentence(words []string) error {
	for _, w := range words {
		if err := f.writeWord(w); err != nil {
			return err
		}
	}
	if err := f.writeWord(""); err != nil {
		return err
	}
	if err := f.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrTransport, err)
	}
	return nil
}

// readWord decodes a length prefix and reads exactly that many bytes.
// A length of 0 returns the empty word without a further read. EOF mid-word
// is a fatal transport error, not a protocol error, since it means the
// connection died rather than sent something malformed.
func (f *frame) readWord() (string, error) {
	first, err := f.r.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: read length prefix: %v", ErrTransport, err)
	}

	rest, decode, err := decodeLengthPrefix(first)
	if err != nil {
		return "", err
	}

	var tail []byte
	if rest > 0 {
		tail = make([]byte, rest)
		if _, err := io.ReadFull(f.r, tail); err != nil {
			return "", fmt.Errorf("%w: read length tail: %v", ErrTransport, err)
		}
	}

	l, err := decode(tail)
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", nil
	}

	buf := make([]byte, l)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return "", fmt.Errorf("%w: read word payload: %v", ErrTransport, err)
	}
	return string(buf), nil
}
