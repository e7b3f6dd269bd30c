package cstream

import (
	"fmt"
	"os"
)

// Mode is a composable access-mode flag set. Exactly twelve combinations are
// valid; they translate one-to-one to the platform's canonical mode strings.
type Mode uint8

const (
	Read Mode = 1 << iota
	Write
	Append
	Binary
	Extended
)

// AccessMode is satisfied by anything that denotes how a file is opened:
// the symbolic Mode flag set, or a RawMode platform string for the cases
// the flags cannot express.
type AccessMode interface {
	modeString() string
}

// RawMode is a platform mode string passed through verbatim.
type RawMode string

func (m RawMode) modeString() string { return string(m) }

func (m Mode) modeString() string {
	switch m {
	case Read:
		return "r"
	case Write:
		return "w"
	case Append:
		return "a"
	case Read | Extended:
		return "r+"
	case Write | Extended:
		return "w+"
	case Append | Extended:
		return "a+"
	case Read | Binary:
		return "rb"
	case Write | Binary:
		return "wb"
	case Append | Binary:
		return "ab"
	case Read | Binary | Extended:
		return "rb+"
	case Write | Binary | Extended:
		return "wb+"
	case Append | Binary | Extended:
		return "ab+"
	}
	panic(fmt.Sprintf("cstream: invalid mode combination 0b%08b", uint8(m)))
}

// String returns the canonical platform mode string for the flag set. Any
// combination outside the twelve documented entries is a programmer error
// and panics.
func (m Mode) String() string { return m.modeString() }

// openFlags derives platform open flags from a mode string: one of r/w/a,
// then at most one 'b' and at most one '+' in either order. 'b' changes
// nothing, as on POSIX; anything else is rejected, as fopen would.
func openFlags(mode string) (int, error) {
	bad := func() (int, error) {
		return 0, fmt.Errorf("cstream: unrecognized mode string %q", mode)
	}
	if mode == "" {
		return bad()
	}

	var flag, extra int
	switch mode[0] {
	case 'r':
		flag = os.O_RDONLY
	case 'w':
		flag = os.O_WRONLY
		extra = os.O_CREATE | os.O_TRUNC
	case 'a':
		flag = os.O_WRONLY
		extra = os.O_CREATE | os.O_APPEND
	default:
		return bad()
	}

	var binary, extended bool
	for i := 1; i < len(mode); i++ {
		switch {
		case mode[i] == 'b' && !binary:
			binary = true
		case mode[i] == '+' && !extended:
			extended = true
		default:
			return bad()
		}
	}
	if extended {
		flag = os.O_RDWR
	}
	return flag | extra, nil
}
