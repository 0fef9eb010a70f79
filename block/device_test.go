package block_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempImage(t *testing.T) string {
	return filepath.Join(t.TempDir(), "image")
}

func TestOpenCreateAndTruncate(t *testing.T) {
	path := tempImage(t)
	dev, err := block.Open(path, true, 0o644)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Truncate(4))
	assert.Equal(t, uint32(4), dev.TotalBlocks())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := tempImage(t)
	dev, err := block.Open(path, true, 0o644)
	require.NoError(t, err)
	defer dev.Close()
	require.NoError(t, dev.Truncate(2))

	want := bytes.Repeat([]byte{0xAB}, block.Size)
	require.NoError(t, dev.WriteBlock(1, want))

	got := make([]byte, block.Size)
	require.NoError(t, dev.ReadBlock(1, got))
	assert.Equal(t, want, got)
}

func TestReadBlockOutOfBounds(t *testing.T) {
	path := tempImage(t)
	dev, err := block.Open(path, true, 0o644)
	require.NoError(t, err)
	defer dev.Close()
	require.NoError(t, dev.Truncate(1))

	buf := make([]byte, block.Size)
	err = dev.ReadBlock(5, buf)
	assert.Error(t, err)
}

func TestWriteBlockWrongSize(t *testing.T) {
	path := tempImage(t)
	dev, err := block.Open(path, true, 0o644)
	require.NoError(t, err)
	defer dev.Close()
	require.NoError(t, dev.Truncate(1))

	err = dev.WriteBlock(0, make([]byte, block.Size-1))
	assert.Error(t, err)
}

func TestMemoryDeviceReadWrite(t *testing.T) {
	dev := block.OpenMemory(4)
	defer dev.Close()
	assert.Equal(t, uint32(4), dev.TotalBlocks())

	want := bytes.Repeat([]byte{0x3c}, block.Size)
	require.NoError(t, dev.WriteBlock(2, want))

	got := make([]byte, block.Size)
	require.NoError(t, dev.ReadBlock(2, got))
	assert.Equal(t, want, got)
}

func TestMemoryDeviceRejectsResize(t *testing.T) {
	dev := block.OpenMemory(2)
	defer dev.Close()
	assert.Error(t, dev.Truncate(4))
}

func TestOpenMissingWithoutCreate(t *testing.T) {
	path := tempImage(t)
	_, err := block.Open(path, false, 0o644)
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.Error(t, statErr)
}
