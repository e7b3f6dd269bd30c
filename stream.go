package cstream

import (
	"bufio"
	"os"
)

const defaultPerm os.FileMode = 0o644

// Stream owns a single stream handle. The zero value is empty: it owns
// nothing and supports only Empty, Close (a no-op) and being a MoveTo
// destination; any other operation on an empty stream panics.
//
// A Stream must not be copied. Use MoveTo to transfer ownership.
type Stream struct {
	h  Handle
	pf Platform

	bufMode BufferMode
	bufSize int
	r       *bufio.Reader
	w       *bufio.Writer

	pushback int // pushed-back byte, -1 when the slot is free
	scanned  int // last byte handed to the scanner, -1 when none
	eof      bool
	err      error
}

// Open opens path on pf with the given access mode. The error is the
// platform's status, passed through untouched; there is no stream to speak
// of when it is non-nil.
func Open(pf Platform, path string, mode AccessMode) (*Stream, error) {
	flag, err := openFlags(mode.modeString())
	if err != nil {
		return nil, err
	}
	h, err := pf.Open(path, flag, defaultPerm)
	if err != nil {
		return nil, err
	}
	return Adopt(pf, h), nil
}

// Adopt wraps a handle whose sole ownership the caller transfers. h must be
// non-nil: emptiness only ever arises from the zero value, a move-out or a
// failed Reopen, never from adopting nothing.
func Adopt(pf Platform, h Handle) *Stream {
	if h == nil {
		panic("cstream: adopt of nil handle")
	}
	s := &Stream{pf: pf}
	s.attach(h)
	return s
}

func (s *Stream) attach(h Handle) {
	s.h = h
	s.resetBuffers()
}

// must returns the handle, panicking if the stream is empty. Every
// pass-through operation goes through it.
func (s *Stream) must() Handle {
	if s.h == nil {
		panic("cstream: operation on empty stream")
	}
	return s.h
}

func (s *Stream) clear() {
	s.h = nil
	s.r, s.w = nil, nil
	s.pushback, s.scanned = -1, -1
	s.eof, s.err = false, nil
}

// Empty reports whether the stream owns no handle.
func (s *Stream) Empty() bool { return s.h == nil }

// Name returns the name of the owned handle.
func (s *Stream) Name() string { return s.must().Name() }

// Handle exposes the owned handle without transferring ownership. The
// caller must not close it. Panics on an empty stream; use Empty to test
// for emptiness.
func (s *Stream) Handle() Handle { return s.must() }

// MoveTo transfers ownership into dst. dst's previously owned handle, if
// any, is closed first with its status discarded, so the assignment never
// leaks. s is empty afterwards. Moving an empty stream empties dst.
func (s *Stream) MoveTo(dst *Stream) {
	if dst == s {
		return
	}
	if dst.h != nil {
		if dst.w != nil {
			_ = dst.w.Flush()
		}
		_ = dst.h.Close()
	}
	*dst = *s
	s.clear()
}

// Release hands the owned handle to the caller and empties the stream. No
// close happens, now or later; buffered writes are flushed first so the
// handle leaves in a coherent state.
func (s *Stream) Release() Handle {
	h := s.must()
	if s.w != nil {
		_ = s.w.Flush()
	}
	s.clear()
	return h
}

// Close flushes, closes the owned handle and empties the stream, returning
// the platform's status. Closing an empty stream is a no-op and returns
// nil, so Close is always safe to defer.
func (s *Stream) Close() error {
	if s.h == nil {
		return nil
	}
	var err error
	if s.w != nil {
		err = s.w.Flush()
	}
	if cerr := s.h.Close(); err == nil {
		err = cerr
	}
	s.clear()
	return err
}

// Reopen re-targets the stream at a new path and mode, keeping this value
// as the conceptual slot. The current handle, if any, is closed first. On
// failure the stream is left empty and the platform's error is returned.
// Buffering reverts to the default, as with a fresh open.
func (s *Stream) Reopen(path string, mode AccessMode) error {
	if s.pf == nil {
		panic("cstream: reopen of stream with no platform")
	}
	if s.h != nil {
		if s.w != nil {
			_ = s.w.Flush()
		}
		_ = s.h.Close()
		s.clear()
	}
	flag, err := openFlags(mode.modeString())
	if err != nil {
		return err
	}
	h, err := s.pf.Open(path, flag, defaultPerm)
	if err != nil {
		return err
	}
	s.bufMode, s.bufSize = FullyBuffered, 0
	s.attach(h)
	return nil
}
