package layout_test

import (
	"testing"

	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSizesDivideEvenly(t *testing.T) {
	assert.Equal(t, 256, layout.InodeRecordSize)
	assert.Equal(t, 64, layout.DirentRecordSize)
	assert.Equal(t, layout.MaxFiles*layout.InodeRecordSize, layout.InodeTableBlocks*layout.BlockSize)
	assert.Equal(t, layout.MaxFiles*layout.DirentRecordSize, layout.DirTableBlocks*layout.BlockSize)
}

func TestDefaultSuperblockValidates(t *testing.T) {
	sb := layout.Default()
	assert.True(t, sb.Validate())
}

func TestSuperblockEncodeDecodeRoundTrip(t *testing.T) {
	sb := layout.Default()
	encoded := sb.Encode()
	require.Len(t, encoded, layout.BlockSize)

	got, err := layout.DecodeSuperblock(encoded)
	require.NoError(t, err)
	assert.Equal(t, sb, got)
}

func TestValidateRejectsBadMagic(t *testing.T) {
	sb := layout.Default()
	sb.Magic = 0
	assert.False(t, sb.Validate())
}

func TestValidateRejectsWrongInodeCount(t *testing.T) {
	sb := layout.Default()
	sb.InodeCount = 1
	assert.False(t, sb.Validate())
}
