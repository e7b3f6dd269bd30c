// Package streamtest provides an instrumented platform wrapper and a
// conformance suite for cstream backends.
//
// The instrumented platform counts the calls that reach the backend, which
// is how tests verify the ownership discipline: Release must leave the
// close count untouched, Close must bump it exactly once, and so on.
//
// Example usage:
//
//	func TestMyBackend(t *testing.T) {
//	    streamtest.Suite(t, func() cstream.Platform {
//	        return mybackend.New()
//	    })
//	}
package streamtest

import (
	"os"

	"github.com/xtrlabs/cstream"
)

// Platform wraps another cstream.Platform and counts the calls that reach
// it. Counters are plain ints; the suite is single-threaded like the
// component under test.
type Platform struct {
	inner cstream.Platform

	Opens   int
	Closes  int
	Removes int
	Renames int
	Temps   int
}

// Wrap instruments an existing platform.
func Wrap(inner cstream.Platform) *Platform {
	return &Platform{inner: inner}
}

// Open implements cstream.Platform, counting successful opens.
//
//nolint:ireturn // cstream.Platform dictates the interface return.
func (p *Platform) Open(name string, flag int, perm os.FileMode) (cstream.Handle, error) {
	h, err := p.inner.Open(name, flag, perm)
	if err != nil {
		return nil, err
	}
	p.Opens++
	return &handle{Handle: h, pf: p}, nil
}

// Remove implements cstream.Platform.
func (p *Platform) Remove(name string) error {
	p.Removes++
	return p.inner.Remove(name)
}

// Rename implements cstream.Platform.
func (p *Platform) Rename(oldpath, newpath string) error {
	p.Renames++
	return p.inner.Rename(oldpath, newpath)
}

// TempFile implements cstream.Platform, counting successful creations.
//
//nolint:ireturn // cstream.Platform dictates the interface return.
func (p *Platform) TempFile(dir, prefix string) (cstream.Handle, error) {
	h, err := p.inner.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	p.Temps++
	return &handle{Handle: h, pf: p}, nil
}

type handle struct {
	cstream.Handle
	pf *Platform
}

func (h *handle) Close() error {
	h.pf.Closes++
	return h.Handle.Close()
}
