// Package format builds a fresh, empty filesystem image, grounded on
// make_bfcyedek.c's main() (superblock, then bitmap, then inode map, then
// zeroed inode table, then root directory) and on disko's
// drivers/unixv1/formattingdriver.go Format (validate-then-write-every-
// region pattern). Unlike the original C tool this does not materialize
// "." and ".." directory entries: SPEC_FULL.md's single flat directory has
// no subdirectories for them to name, so the root inode is reserved in the
// inode table and bitmap but left out of the directory table itself.
package format

import (
	"time"

	"github.com/elifsorguc/bfs-fuse/alloc"
	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/dirtable"
	"github.com/elifsorguc/bfs-fuse/inode"
	"github.com/elifsorguc/bfs-fuse/layout"
)

// Format creates (or truncates) the file at path and writes a complete,
// empty, valid image to it.
func Format(path string) error {
	dev, err := block.Open(path, true, 0o666)
	if err != nil {
		return err
	}
	defer dev.Close()

	// Shrinking to zero first discards any previous contents, so the regrown
	// image is zero-filled throughout, data blocks included.
	if err := dev.Truncate(0); err != nil {
		return err
	}
	if err := dev.Truncate(layout.TotalBlocks); err != nil {
		return err
	}

	sb := layout.Default()
	if err := dev.WriteBlock(block.ID(layout.SuperblockNum), sb.Encode()); err != nil {
		return err
	}

	a := alloc.New()
	a.ReserveSystemBlocks()
	if err := a.Flush(dev); err != nil {
		return err
	}

	inos := inode.NewTable()
	rootInode := inode.NewFile(0o755, time.Now())
	rootInode.Refcount = 2
	rootInode.Direct[0] = layout.DirTableStart
	rootInode.Direct[1] = layout.DirTableStart + 1
	if err := inos.Set(layout.RootInodeNum, rootInode); err != nil {
		return err
	}
	if err := inos.Flush(dev); err != nil {
		return err
	}

	dir := dirtable.NewTable()
	return dir.Flush(dev)
}
