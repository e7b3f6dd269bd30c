// Package cstream wraps a buffered sequential file stream in a value that
// owns the underlying handle exclusively. A Stream is created by opening a
// path with an access mode, or by adopting a handle the caller hands over;
// ownership can be moved between streams but never duplicated, and closing
// releases the handle exactly once.
//
// The platform primitive itself is never reimplemented here: all I/O is
// forwarded to a Handle obtained from a Platform backend. The billy
// subpackage provides backends over go-billy filesystems; the streamtest
// subpackage provides an instrumented backend for tests.
package cstream

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// Handle is an open native stream handle. billy.File satisfies it, as does
// *os.File.
type Handle interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Name() string
}

// Platform is the buffered-file-stream primitive a Stream forwards to.
// Implementations translate these calls to a concrete filesystem; they do
// not retry or reinterpret errors.
type Platform interface {
	Open(name string, flag int, perm os.FileMode) (Handle, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	TempFile(dir, prefix string) (Handle, error)
}

// Remove deletes the named file on pf.
func Remove(pf Platform, name string) error {
	return pf.Remove(name)
}

// Rename renames oldpath to newpath on pf.
func Rename(pf Platform, oldpath, newpath string) error {
	return pf.Rename(oldpath, newpath)
}

// TempFile creates and opens a uniquely named file in dir (the backend's
// default temp location when dir is empty). The returned stream owns the
// handle.
func TempFile(pf Platform, dir, prefix string) (*Stream, error) {
	h, err := pf.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return Adopt(pf, h), nil
}

// TempName generates a unique temporary file name under the system temp
// directory. The name is ULID-suffixed, so successive calls never collide.
func TempName(prefix string) string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return filepath.Join(os.TempDir(), prefix+id.String())
}
