package cstream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// BufferMode selects the buffering discipline, mirroring the platform's
// fully-buffered, line-buffered and unbuffered modes.
type BufferMode int

const (
	FullyBuffered BufferMode = iota
	LineBuffered
	Unbuffered
)

// DefaultBufferSize is used when buffering is requested without a size.
const DefaultBufferSize = 4096

func (s *Stream) resetBuffers() {
	s.pushback, s.scanned = -1, -1
	if s.bufMode == Unbuffered {
		s.r, s.w = nil, nil
		return
	}
	size := s.bufSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	s.r = bufio.NewReaderSize(s.h, size)
	s.w = bufio.NewWriterSize(s.h, size)
}

// note records a transfer error into the sticky flags. io.EOF marks
// end-of-stream rather than failure, as the platform primitive does.
func (s *Stream) note(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		return
	}
	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) readByte() (byte, error) {
	if s.pushback >= 0 {
		b := byte(s.pushback)
		s.pushback = -1
		return b, nil
	}
	if s.r != nil {
		return s.r.ReadByte()
	}
	var one [1]byte
	n, err := s.h.Read(one[:])
	if n == 1 {
		return one[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

func (s *Stream) readInto(p []byte) (int, error) {
	n := 0
	if s.pushback >= 0 && len(p) > 0 {
		p[0] = byte(s.pushback)
		s.pushback = -1
		n = 1
	}
	for n < len(p) {
		var m int
		var err error
		if s.r != nil {
			m, err = s.r.Read(p[n:])
		} else {
			m, err = s.h.Read(p[n:])
		}
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

func (s *Stream) writeBytes(p []byte) (int, error) {
	if s.w == nil {
		return s.h.Write(p)
	}
	n, err := s.w.Write(p)
	if err == nil && s.bufMode == LineBuffered && bytes.IndexByte(p, '\n') >= 0 {
		err = s.w.Flush()
	}
	return n, err
}

// Read transfers up to len(p) bytes into p and returns the number moved. A
// short count is not itself an error: check EOF and Err to tell
// end-of-stream from failure.
func (s *Stream) Read(p []byte) int {
	s.must()
	n, err := s.readInto(p)
	s.note(err)
	return n
}

// Write transfers len(p) bytes from p and returns the number moved.
func (s *Stream) Write(p []byte) int {
	s.must()
	n, err := s.writeBytes(p)
	s.note(err)
	return n
}

// ReadN reads count elements of size bytes each into p, returning the
// number of complete elements read. p must hold size*count bytes.
func (s *Stream) ReadN(p []byte, size, count int) int {
	s.must()
	if size <= 0 || count <= 0 {
		return 0
	}
	if count > len(p)/size { // also rules out size*count overflowing
		panic("cstream: element transfer exceeds buffer")
	}
	n, err := s.readInto(p[:size*count])
	s.note(err)
	return n / size
}

// WriteN writes count elements of size bytes each from p, returning the
// number of complete elements written. p must hold size*count bytes.
func (s *Stream) WriteN(p []byte, size, count int) int {
	s.must()
	if size <= 0 || count <= 0 {
		return 0
	}
	if count > len(p)/size { // also rules out size*count overflowing
		panic("cstream: element transfer exceeds buffer")
	}
	n, err := s.writeBytes(p[:size*count])
	s.note(err)
	return n / size
}

// ReadByte reads one byte. ok is false at end-of-stream or on error; the
// flags tell which.
func (s *Stream) ReadByte() (b byte, ok bool) {
	s.must()
	b, err := s.readByte()
	if err != nil {
		s.note(err)
		return 0, false
	}
	return b, true
}

// WriteByte writes one byte, reporting whether it was accepted.
func (s *Stream) WriteByte(b byte) bool {
	s.must()
	var one [1]byte
	one[0] = b
	_, err := s.writeBytes(one[:])
	s.note(err)
	return err == nil
}

// WriteString writes str verbatim, reporting whether all of it was
// accepted.
func (s *Stream) WriteString(str string) bool {
	s.must()
	n, err := s.writeBytes([]byte(str))
	s.note(err)
	return err == nil && n == len(str)
}

// ReadLine fills buf with at most len(buf) bytes, stopping after a newline.
// It returns the filled prefix of buf, or nil when nothing could be read.
// The newline, when present, is kept.
func (s *Stream) ReadLine(buf []byte) []byte {
	s.must()
	n := 0
	for n < len(buf) {
		b, err := s.readByte()
		if err != nil {
			s.note(err)
			break
		}
		buf[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	if n == 0 {
		return nil
	}
	return buf[:n]
}

// UnreadByte pushes b back onto the stream; the next read returns it first.
// One byte of pushback is guaranteed; pushing onto an occupied slot fails.
// Pushback clears the end-of-file flag and is discarded by positioning.
func (s *Stream) UnreadByte(b byte) bool {
	s.must()
	if s.pushback >= 0 {
		return false
	}
	s.pushback = int(b)
	s.eof = false
	return true
}

type streamWriter struct{ s *Stream }

func (sw streamWriter) Write(p []byte) (int, error) { return sw.s.writeBytes(p) }

// streamReader adapts the stream for fmt's scanner. It is byte-oriented,
// as the platform's formatted input is: each byte is one rune. Implementing
// io.RuneScanner matters here — fmt reads one rune past the last matched
// item and unreads it, and that lookahead byte must land back in the
// pushback slot rather than be dropped with the scanner.
type streamReader struct{ s *Stream }

func (sr streamReader) Read(p []byte) (int, error) {
	if sr.s.pushback >= 0 && len(p) > 0 {
		p[0] = byte(sr.s.pushback)
		sr.s.pushback = -1
		return 1, nil
	}
	if sr.s.r != nil {
		return sr.s.r.Read(p)
	}
	return sr.s.h.Read(p)
}

func (sr streamReader) ReadRune() (rune, int, error) {
	b, err := sr.s.readByte()
	if err != nil {
		return 0, 0, err
	}
	sr.s.scanned = int(b)
	return rune(b), 1, nil
}

func (sr streamReader) UnreadRune() error {
	s := sr.s
	if s.scanned < 0 || s.pushback >= 0 {
		return errors.New("cstream: no byte to unread")
	}
	s.pushback = s.scanned
	s.scanned = -1
	return nil
}

// Printf formats into the stream. The format string and arguments go
// verbatim to the fmt machinery; this layer validates nothing. Returns the
// number of bytes written.
func (s *Stream) Printf(format string, args ...any) int {
	s.must()
	n, err := fmt.Fprintf(streamWriter{s}, format, args...)
	s.note(err)
	return n
}

// Scanf scans from the stream. Returns the count of items successfully
// assigned; the flags record why a scan stopped early. The byte read past
// the last matched item is pushed back, so the next read sees it.
func (s *Stream) Scanf(format string, args ...any) int {
	s.must()
	s.scanned = -1
	n, err := fmt.Fscanf(streamReader{s}, format, args...)
	s.note(err)
	return n
}

// Position is an opaque stream-position token.
type Position struct {
	offset int64
}

// sync flushes pending writes, discards read-ahead and pushback, and leaves
// the handle at the stream's logical offset, which it returns.
func (s *Stream) sync() (int64, error) {
	if s.w != nil && s.w.Buffered() > 0 {
		if err := s.w.Flush(); err != nil {
			return 0, err
		}
	}
	pos, err := s.h.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	var back int64
	if s.r != nil {
		back += int64(s.r.Buffered())
	}
	if s.pushback >= 0 {
		back++
		s.pushback = -1
	}
	if back > 0 {
		pos -= back
		if _, err := s.h.Seek(pos, io.SeekStart); err != nil {
			return 0, err
		}
		if s.r != nil {
			s.r.Reset(s.h)
		}
	}
	return pos, nil
}

// Tell reports the current logical offset, or -1 on failure.
func (s *Stream) Tell() int64 {
	s.must()
	pos, err := s.sync()
	if err != nil {
		s.note(err)
		return -1
	}
	return pos
}

// Seek repositions the stream; whence is io.SeekStart, io.SeekCurrent or
// io.SeekEnd. Seeking discards pushback and clears the end-of-file flag.
// Reports whether the reposition succeeded.
func (s *Stream) Seek(offset int64, whence int) bool {
	s.must()
	if _, err := s.sync(); err != nil {
		s.note(err)
		return false
	}
	if _, err := s.h.Seek(offset, whence); err != nil {
		s.note(err)
		return false
	}
	s.eof = false
	return true
}

// Pos returns an opaque token for the current position.
func (s *Stream) Pos() (Position, bool) {
	s.must()
	pos, err := s.sync()
	if err != nil {
		s.note(err)
		return Position{}, false
	}
	return Position{offset: pos}, true
}

// SetPos restores a position previously obtained from Pos.
func (s *Stream) SetPos(p Position) bool {
	return s.Seek(p.offset, io.SeekStart)
}

// Rewind repositions to the start of the stream and clears both the
// end-of-file and error flags.
func (s *Stream) Rewind() {
	s.Seek(0, io.SeekStart)
	s.eof, s.err = false, nil
}

// Flush forces buffered writes through to the handle.
func (s *Stream) Flush() error {
	s.must()
	if s.w == nil {
		return nil
	}
	return s.w.Flush()
}

// SetBuffering selects the buffering mode. size <= 0 selects
// DefaultBufferSize. Pending writes are flushed and read-ahead discarded
// before the change takes effect. Reports whether the switch succeeded.
func (s *Stream) SetBuffering(mode BufferMode, size int) bool {
	s.must()
	if _, err := s.sync(); err != nil {
		s.note(err)
		return false
	}
	s.bufMode, s.bufSize = mode, size
	s.resetBuffers()
	return true
}

// SetBuffer is the setbuf shape: nil selects unbuffered operation,
// otherwise fully-buffered with len(buf) as the size hint. Buffered I/O
// here cannot alias a caller-owned array, so only the size is taken from
// buf.
func (s *Stream) SetBuffer(buf []byte) bool {
	if buf == nil {
		return s.SetBuffering(Unbuffered, 0)
	}
	return s.SetBuffering(FullyBuffered, len(buf))
}

// EOF reports whether end-of-stream has been observed.
func (s *Stream) EOF() bool {
	s.must()
	return s.eof
}

// Err returns the sticky error recorded by a failed transfer, nil if none.
func (s *Stream) Err() error {
	s.must()
	return s.err
}

// ClearErr clears the end-of-file and error flags.
func (s *Stream) ClearErr() {
	s.must()
	s.eof, s.err = false, nil
}
