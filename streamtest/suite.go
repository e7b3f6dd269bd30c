package streamtest

import (
	"bytes"
	"testing"

	"github.com/xtrlabs/cstream"
)

// Suite runs the backend conformance tests. The newPlatform function should
// return a fresh, empty filesystem for each test; tests create and remove
// files under relative paths.
func Suite(t *testing.T, newPlatform func() cstream.Platform) {
	t.Run("WriteReadRoundTrip", func(t *testing.T) {
		testWriteReadRoundTrip(t, newPlatform())
	})
	t.Run("SequentialWrites", func(t *testing.T) {
		testSequentialWrites(t, newPlatform())
	})
	t.Run("Append", func(t *testing.T) {
		testAppend(t, newPlatform())
	})
	t.Run("Reopen", func(t *testing.T) {
		testReopen(t, newPlatform())
	})
	t.Run("RemoveRename", func(t *testing.T) {
		testRemoveRename(t, newPlatform())
	})
	t.Run("TempFile", func(t *testing.T) {
		testTempFile(t, newPlatform())
	})
}

func readAll(t *testing.T, pf cstream.Platform, path string) []byte {
	t.Helper()
	s, err := cstream.Open(pf, path, cstream.Read|cstream.Binary)
	if err != nil {
		t.Fatalf("Open(%q, rb): %v", path, err)
	}
	defer func() { _ = s.Close() }()

	var out []byte
	buf := make([]byte, 64)
	for {
		n := s.Read(buf)
		out = append(out, buf[:n]...)
		if s.EOF() {
			return out
		}
		if err := s.Err(); err != nil {
			t.Fatalf("Read(%q): %v", path, err)
		}
	}
}

// testWriteReadRoundTrip writes "ABCDE" in wb and reads it back in rb.
func testWriteReadRoundTrip(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.Open(pf, "roundtrip.bin", cstream.Write|cstream.Binary)
	if err != nil {
		t.Fatalf("Open(wb): %v", err)
	}
	if n := s.Write([]byte("ABCDE")); n != 5 {
		t.Fatalf("Write: moved %d bytes, want 5", n)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := cstream.Open(pf, "roundtrip.bin", cstream.Read|cstream.Binary)
	if err != nil {
		t.Fatalf("Open(rb): %v", err)
	}
	defer func() { _ = r.Close() }()

	buf := make([]byte, 5)
	if n := r.Read(buf); n != 5 {
		t.Fatalf("Read: moved %d bytes, want 5", n)
	}
	if !bytes.Equal(buf, []byte("ABCDE")) {
		t.Errorf("Read: got %q, want %q", buf, "ABCDE")
	}
}

// testSequentialWrites writes "X" then "Y" without closing in between and
// expects "XY" on the next read.
func testSequentialWrites(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.Open(pf, "seq.txt", cstream.Write)
	if err != nil {
		t.Fatalf("Open(w): %v", err)
	}
	s.Write([]byte("X"))
	s.Write([]byte("Y"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readAll(t, pf, "seq.txt"); string(got) != "XY" {
		t.Errorf("read back %q, want %q", got, "XY")
	}
}

// testAppend opens an existing file in a and expects writes to land after
// the existing contents.
func testAppend(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.Open(pf, "app.txt", cstream.Write)
	if err != nil {
		t.Fatalf("Open(w): %v", err)
	}
	s.Write([]byte("head"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	a, err := cstream.Open(pf, "app.txt", cstream.Append)
	if err != nil {
		t.Fatalf("Open(a): %v", err)
	}
	a.Write([]byte("+tail"))
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readAll(t, pf, "app.txt"); string(got) != "head+tail" {
		t.Errorf("read back %q, want %q", got, "head+tail")
	}
}

// testReopen re-targets an open stream onto a second path and verifies the
// first path's contents are untouched.
func testReopen(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.Open(pf, "first.txt", cstream.Write)
	if err != nil {
		t.Fatalf("Open(w): %v", err)
	}
	s.Write([]byte("first"))

	if err := s.Reopen("second.txt", cstream.Write); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if s.Empty() {
		t.Fatal("Reopen left the stream empty")
	}
	s.Write([]byte("second"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readAll(t, pf, "first.txt"); string(got) != "first" {
		t.Errorf("first.txt = %q after reopen, want %q", got, "first")
	}
	if got := readAll(t, pf, "second.txt"); string(got) != "second" {
		t.Errorf("second.txt = %q, want %q", got, "second")
	}
}

func testRemoveRename(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.Open(pf, "victim.txt", cstream.Write)
	if err != nil {
		t.Fatalf("Open(w): %v", err)
	}
	s.Write([]byte("data"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := cstream.Rename(pf, "victim.txt", "renamed.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := readAll(t, pf, "renamed.txt"); string(got) != "data" {
		t.Errorf("renamed.txt = %q, want %q", got, "data")
	}

	if err := cstream.Remove(pf, "renamed.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := cstream.Open(pf, "renamed.txt", cstream.Read); err == nil {
		t.Error("Open succeeded on a removed file")
	}
}

func testTempFile(t *testing.T, pf cstream.Platform) {
	t.Helper()
	s, err := cstream.TempFile(pf, "", "suite-")
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	if s.Empty() {
		t.Fatal("TempFile returned an empty stream")
	}
	name := s.Name()
	s.Write([]byte("tmp"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readAll(t, pf, name); string(got) != "tmp" {
		t.Errorf("temp file = %q, want %q", got, "tmp")
	}
}
