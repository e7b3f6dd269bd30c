package cstream_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xtrlabs/cstream"
	"github.com/xtrlabs/cstream/billy"
)

func TestBinaryRoundTrip(t *testing.T) {
	pf := newPlatform()

	w, err := cstream.Open(pf, "data.bin", cstream.Write|cstream.Binary)
	require.NoError(t, err)
	require.Equal(t, 5, w.Write([]byte("ABCDE")))
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "data.bin", cstream.Read|cstream.Binary)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 5)
	require.Equal(t, 5, r.Read(buf))
	require.Equal(t, "ABCDE", string(buf))
	require.NoError(t, r.Err())

	_, ok := r.ReadByte()
	require.False(t, ok)
	require.True(t, r.EOF())
	require.NoError(t, r.Err(), "end-of-stream is not a failure")
}

func TestShortReadSetsEOFNotError(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "short.bin", cstream.Write|cstream.Binary)
	require.NoError(t, err)
	w.Write([]byte("abc"))
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "short.bin", cstream.Read|cstream.Binary)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 10)
	require.Equal(t, 3, r.Read(buf))
	require.True(t, r.EOF())
	require.NoError(t, r.Err())

	r.ClearErr()
	require.False(t, r.EOF())
}

func TestElementTransfer(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "elems.bin", cstream.Write|cstream.Binary)
	require.NoError(t, err)
	require.Equal(t, 3, w.WriteN([]byte("aabbcc"), 2, 3))
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "elems.bin", cstream.Read|cstream.Binary)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 8)
	require.Equal(t, 3, r.ReadN(buf, 2, 4), "only three complete elements exist")
	require.True(t, r.EOF())
}

func TestAppendWritesAtEndRegardlessOfPosition(t *testing.T) {
	// Needs real O_APPEND per-write semantics, so run on the OS backend.
	pf := billy.NewOS(t.TempDir())

	w, err := cstream.Open(pf, "app.txt", cstream.Write)
	require.NoError(t, err)
	w.Write([]byte("base"))
	require.NoError(t, w.Close())

	a, err := cstream.Open(pf, "app.txt", cstream.Append)
	require.NoError(t, err)
	require.True(t, a.Seek(0, io.SeekStart))
	a.Write([]byte("+more"))
	require.NoError(t, a.Close())

	require.Equal(t, "base+more", readFile(t, pf, "app.txt"))
}

func TestReadLine(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "lines.txt", cstream.Write)
	require.NoError(t, err)
	w.WriteString("one\ntwo\n")
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "lines.txt", cstream.Read)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 16)
	require.Equal(t, "one\n", string(r.ReadLine(buf)))
	require.Equal(t, "two\n", string(r.ReadLine(buf)))
	require.Nil(t, r.ReadLine(buf))
	require.True(t, r.EOF())
}

func TestReadLineBoundedBuffer(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "long.txt", cstream.Write)
	require.NoError(t, err)
	w.WriteString("abcdefgh\n")
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "long.txt", cstream.Read)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 4)
	require.Equal(t, "abcd", string(r.ReadLine(buf)))
	require.Equal(t, "efgh", string(r.ReadLine(buf)))
	require.Equal(t, "\n", string(r.ReadLine(buf)))
}

func TestUnreadByte(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "push.txt", cstream.Write)
	require.NoError(t, err)
	w.WriteString("xy")
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "push.txt", cstream.Read)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	b, ok := r.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte('x'), b)

	// The pushed-back byte need not match what was read.
	require.True(t, r.UnreadByte('z'))
	require.False(t, r.UnreadByte('q'), "only one byte of pushback")

	b, ok = r.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte('z'), b)

	b, ok = r.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte('y'), b)
}

func TestFormattedRoundTrip(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "fmt.txt", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	n := s.Printf("%s %d\n", "answer", 42)
	require.Equal(t, len("answer 42\n"), n)

	s.Rewind()

	var word string
	var num int
	require.Equal(t, 2, s.Scanf("%s %d\n", &word, &num))
	require.Equal(t, "answer", word)
	require.Equal(t, 42, num)
}

func TestScanfPushesBackLookahead(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "look.txt", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.WriteString("42:rest")
	s.Rewind()

	var num int
	require.Equal(t, 1, s.Scanf("%d", &num))
	require.Equal(t, 42, num)

	// The ':' that stopped the %d match belongs to the stream, not to the
	// scanner.
	buf := make([]byte, 8)
	n := s.Read(buf)
	require.Equal(t, ":rest", string(buf[:n]))
}

func TestElementTransferOverflowPanics(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "of.bin", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	buf := make([]byte, 8)
	huge := int(^uint(0) >> 2)
	require.Panics(t, func() { s.ReadN(buf, huge, 4) })
	require.Panics(t, func() { s.WriteN(buf, huge, 4) })
}

func TestTellAndSeek(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "pos.txt", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Write([]byte("hello"))
	require.Equal(t, int64(5), s.Tell())

	require.True(t, s.Seek(1, io.SeekStart))
	require.Equal(t, int64(1), s.Tell())

	buf := make([]byte, 4)
	require.Equal(t, 4, s.Read(buf))
	require.Equal(t, "ello", string(buf))
}

func TestTellAccountsForReadAhead(t *testing.T) {
	pf := newPlatform()
	w, err := cstream.Open(pf, "ra.txt", cstream.Write)
	require.NoError(t, err)
	w.WriteString("0123456789")
	require.NoError(t, w.Close())

	r, err := cstream.Open(pf, "ra.txt", cstream.Read)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	buf := make([]byte, 3)
	require.Equal(t, 3, r.Read(buf))
	require.Equal(t, int64(3), r.Tell(), "buffered read-ahead must not show through")

	// Reads continue from the logical offset after the Tell sync.
	require.Equal(t, 3, r.Read(buf))
	require.Equal(t, "345", string(buf))
}

func TestPosRoundTrip(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "tok.txt", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Write([]byte("abcdef"))
	require.True(t, s.Seek(2, io.SeekStart))

	tok, ok := s.Pos()
	require.True(t, ok)

	buf := make([]byte, 2)
	s.Read(buf)
	require.Equal(t, "cd", string(buf))

	require.True(t, s.SetPos(tok))
	s.Read(buf)
	require.Equal(t, "cd", string(buf), "SetPos must restore the saved position")
}

func TestRewindClearsFlags(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "rw.txt", cstream.Write|cstream.Extended)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Write([]byte("z"))
	s.Rewind()

	buf := make([]byte, 8)
	require.Equal(t, 1, s.Read(buf))
	require.True(t, s.EOF())

	s.Rewind()
	require.False(t, s.EOF())
	require.Equal(t, int64(0), s.Tell())
}

func TestUnbufferedWritesAreImmediate(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "ub.txt", cstream.Write)
	require.NoError(t, err)
	require.True(t, s.SetBuffering(cstream.Unbuffered, 0))

	s.Write([]byte("now"))
	require.Equal(t, "now", readFile(t, pf, "ub.txt"), "unbuffered writes reach the file without a flush")
	require.NoError(t, s.Close())
}

func TestFullyBufferedWritesNeedFlush(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "fb.txt", cstream.Write)
	require.NoError(t, err)

	s.Write([]byte("held"))
	require.Equal(t, "", readFile(t, pf, "fb.txt"), "buffered bytes must not be visible yet")

	require.NoError(t, s.Flush())
	require.Equal(t, "held", readFile(t, pf, "fb.txt"))
	require.NoError(t, s.Close())
}

func TestLineBufferedFlushesOnNewline(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "lb.txt", cstream.Write)
	require.NoError(t, err)
	require.True(t, s.SetBuffering(cstream.LineBuffered, 16))

	s.Write([]byte("partial"))
	require.Equal(t, "", readFile(t, pf, "lb.txt"))

	s.Write([]byte(" line\n"))
	require.Equal(t, "partial line\n", readFile(t, pf, "lb.txt"))
	require.NoError(t, s.Close())
}

func TestSetBufferNilSelectsUnbuffered(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "sb.txt", cstream.Write)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.True(t, s.SetBuffer(nil))
	s.Write([]byte("direct"))
	require.Equal(t, "direct", readFile(t, pf, "sb.txt"))
}

func TestCloseFlushesBufferedWrites(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "cf.txt", cstream.Write)
	require.NoError(t, err)
	s.Write([]byte("pending"))
	require.NoError(t, s.Close())
	require.Equal(t, "pending", readFile(t, pf, "cf.txt"))
}

func TestRawModeOpens(t *testing.T) {
	pf := newPlatform()
	s, err := cstream.Open(pf, "raw.txt", cstream.RawMode("w+b"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Write([]byte("raw"))
	s.Rewind()
	buf := make([]byte, 3)
	require.Equal(t, 3, s.Read(buf))
	require.Equal(t, "raw", string(buf))
}

func TestRawModeGarbageIsOpenError(t *testing.T) {
	pf := newPlatform()
	_, err := cstream.Open(pf, "raw.txt", cstream.RawMode("nope"))
	require.Error(t, err)
	require.Zero(t, pf.Opens, "an invalid mode must never reach the platform")
}
