package alloc_test

import (
	"path/filepath"
	"testing"

	"github.com/elifsorguc/bfs-fuse/alloc"
	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDevice(t *testing.T) *block.Device {
	path := filepath.Join(t.TempDir(), "image")
	dev, err := block.Open(path, true, 0o644)
	require.NoError(t, err)
	require.NoError(t, dev.Truncate(layout.TotalBlocks))
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestReserveSystemBlocksExcludesThemFromAllocation(t *testing.T) {
	a := alloc.New()
	a.ReserveSystemBlocks()

	id, err := a.AllocDataBlock()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, layout.DataStart)
}

func TestAllocFreeDataBlock(t *testing.T) {
	a := alloc.New()
	a.ReserveSystemBlocks()

	id, err := a.AllocDataBlock()
	require.NoError(t, err)
	before := a.CountFreeDataBlocks()
	a.FreeDataBlock(id)
	assert.Equal(t, before+1, a.CountFreeDataBlocks())
}

func TestAllocInodeSkipsRoot(t *testing.T) {
	a := alloc.New()
	a.ReserveSystemBlocks()

	num, err := a.AllocInode()
	require.NoError(t, err)
	assert.NotEqual(t, layout.RootInodeNum, num)
}

func TestReserveSystemBlocksSetsBitZeroForRootInode(t *testing.T) {
	a := alloc.New()
	a.ReserveSystemBlocks()

	assert.Equal(t, layout.MaxFiles-1, a.CountFreeInodes())
	a.FreeInode(layout.RootInodeNum)
	assert.Equal(t, layout.MaxFiles, a.CountFreeInodes())
}

func TestAllocInodeExhaustion(t *testing.T) {
	a := alloc.New()
	a.ReserveSystemBlocks()

	for i := 0; i < layout.MaxFiles-1; i++ {
		_, err := a.AllocInode()
		require.NoError(t, err)
	}
	_, err := a.AllocInode()
	assert.Error(t, err)
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	dev := openDevice(t)
	a := alloc.New()
	a.ReserveSystemBlocks()
	id, err := a.AllocDataBlock()
	require.NoError(t, err)
	freeBefore := a.CountFreeDataBlocks()
	require.NoError(t, a.Flush(dev))

	loaded, err := alloc.Load(dev)
	require.NoError(t, err)

	assert.Equal(t, freeBefore, loaded.CountFreeDataBlocks())
	loaded.FreeDataBlock(id)
	assert.Equal(t, freeBefore+1, loaded.CountFreeDataBlocks())
}
