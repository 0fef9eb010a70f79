package inode_test

import (
	"testing"
	"time"

	"github.com/elifsorguc/bfs-fuse/inode"
	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ino := inode.NewFile(0o644, time.Unix(1000, 0))
	ino.Direct[0] = 42
	ino.Indirect = 99
	ino.Size = 12345

	encoded := ino.Encode()
	require.Len(t, encoded, layout.InodeRecordSize)

	got, err := inode.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, ino, got)
}

func TestZeroInodeIsNotAllocated(t *testing.T) {
	assert.False(t, inode.Zero().IsAllocated())
}

func TestNewFileIsAllocated(t *testing.T) {
	ino := inode.NewFile(0o644, time.Now())
	assert.True(t, ino.IsAllocated())
	assert.Equal(t, int32(1), ino.Refcount)
}
