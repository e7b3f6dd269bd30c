package cstream_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xtrlabs/cstream"
)

func writeFlags(t *testing.T) int {
	t.Helper()
	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

// readFile reads the whole file through a fresh read-mode stream.
func readFile(t *testing.T, pf cstream.Platform, path string) string {
	t.Helper()
	s, err := cstream.Open(pf, path, cstream.Read|cstream.Binary)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var out []byte
	buf := make([]byte, 32)
	for {
		n := s.Read(buf)
		out = append(out, buf[:n]...)
		if s.EOF() {
			break
		}
		require.NoError(t, s.Err())
	}
	return string(out)
}
