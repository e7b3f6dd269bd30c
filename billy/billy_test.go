package billy_test

import (
	"testing"

	"github.com/xtrlabs/cstream"
	"github.com/xtrlabs/cstream/billy"
	"github.com/xtrlabs/cstream/streamtest"
)

func TestInMemory_Suite(t *testing.T) {
	streamtest.Suite(t, func() cstream.Platform {
		return billy.NewInMemory()
	})
}

func TestOS_Suite(t *testing.T) {
	streamtest.Suite(t, func() cstream.Platform {
		return billy.NewOS(t.TempDir())
	})
}

func TestOpenMissingFile(t *testing.T) {
	pf := billy.NewInMemory()
	if _, err := pf.Open("missing.txt", 0, 0o644); err == nil {
		t.Error("Open succeeded on a missing file")
	}
}

func TestRawExposesFilesystem(t *testing.T) {
	pf := billy.NewInMemory()
	if pf.Raw() == nil {
		t.Error("Raw() returned nil")
	}
}
