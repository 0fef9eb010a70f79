package dirtable_test

import (
	"testing"

	"github.com/elifsorguc/bfs-fuse/dirtable"
	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := dirtable.Entry{Name: "notes.txt", InodeNum: 7}
	encoded, err := e.Encode()
	require.NoError(t, err)
	require.Len(t, encoded, layout.DirentRecordSize)

	got, err := dirtable.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEncodeRejectsTooLongName(t *testing.T) {
	e := dirtable.Entry{Name: string(make([]byte, layout.FilenameLen)), InodeNum: 1}
	_, err := e.Encode()
	assert.Error(t, err)
}

func TestFreeSlotHasNoInode(t *testing.T) {
	assert.True(t, dirtable.Entry{}.Free())
	assert.False(t, dirtable.Entry{InodeNum: 1}.Free())
}
