// Package billy adapts go-billy filesystems to the cstream platform
// interface. The osfs backend is the real filesystem; memfs gives a
// hermetic in-memory one with the same contract.
package billy

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/xtrlabs/cstream"
)

// Platform implements cstream.Platform on top of a go-billy filesystem.
type Platform struct {
	fs billy.Filesystem
}

// New wraps an arbitrary go-billy filesystem.
func New(fsys billy.Filesystem) *Platform {
	return &Platform{fs: fsys}
}

// NewOS returns a platform rooted at path on the native filesystem.
func NewOS(path string) *Platform {
	return &Platform{fs: osfs.New(path)}
}

// NewNativeOS returns a platform over the native filesystem as a whole,
// accepting absolute paths.
func NewNativeOS() *Platform {
	return &Platform{fs: osfs.New("/")}
}

// NewInMemory returns a hermetic in-memory platform.
func NewInMemory() *Platform {
	return &Platform{fs: memfs.New()}
}

// Open implements cstream.Platform. The returned billy file is used as the
// stream handle directly.
//
//nolint:ireturn // cstream.Platform dictates the interface return.
func (p *Platform) Open(name string, flag int, perm os.FileMode) (cstream.Handle, error) {
	f, err := p.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	return f, nil
}

// Remove implements cstream.Platform.
func (p *Platform) Remove(name string) error {
	if err := p.fs.Remove(name); err != nil {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// Rename implements cstream.Platform.
func (p *Platform) Rename(oldpath, newpath string) error {
	if err := p.fs.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("billy: rename %q -> %q: %w", oldpath, newpath, err)
	}
	return nil
}

// TempFile implements cstream.Platform.
//
//nolint:ireturn // cstream.Platform dictates the interface return.
func (p *Platform) TempFile(dir, prefix string) (cstream.Handle, error) {
	f, err := util.TempFile(p.fs, dir, prefix)
	if err != nil {
		return nil, fmt.Errorf("billy: tempfile dir=%q prefix=%q: %w", dir, prefix, err)
	}
	return f, nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // returning the interface exposes the adapter target.
func (p *Platform) Raw() billy.Filesystem {
	return p.fs
}
