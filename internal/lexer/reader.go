package lexer

import "io"

// Reader wraps a seekable byte source with one byte of lookahead. Peek
// returns the next byte without consuming it; Eat consumes whatever Peek
// last returned; Rewind seeks back to byte zero and discards the cached
// lookahead.
type Reader struct {
	src   io.ReadSeeker
	stash *byte
	eof   bool
}

// NewReader wraps src for lexing.
func NewReader(src io.ReadSeeker) *Reader {
	return &Reader{src: src}
}

// Peek returns the next byte and true, or false at end of input.
func (r *Reader) Peek() (byte, bool) {
	if r.stash != nil {
		return *r.stash, true
	}
	if r.eof {
		return 0, false
	}

	var buf [1]byte
	n, err := r.src.Read(buf[:])
	if n == 0 || err != nil {
		r.eof = true
		return 0, false
	}
	r.stash = &buf[0]
	return buf[0], true
}

// Eat discards the byte last returned by Peek.
func (r *Reader) Eat() {
	r.stash = nil
}

// Rewind returns the reader to the start of the source.
func (r *Reader) Rewind() error {
	_, err := r.src.Seek(0, io.SeekStart)
	r.stash = nil
	r.eof = false
	return err
}
