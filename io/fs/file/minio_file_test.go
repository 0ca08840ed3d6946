package file

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinioFileWriteWhileReading(t *testing.T) {
	// A handle without a write buffer is a read handle; writing through it
	// must fail instead of panicking.
	f := &MinioFile{fileName: "obj"}
	_, err := f.Write([]byte("x"))
	require.Error(t, err)
}
