// Package alloc manages the two free/used bit vectors (data blocks and
// inodes), grounded on disko's drivers/common/allocatormap.go, which keeps
// an in-memory bitmap.Bitmap alongside the blocks it was read from and
// writes it back verbatim on flush.
package alloc

import (
	"github.com/elifsorguc/bfs-fuse/bitvector"
	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/layout"
)

// Allocator owns the data-block and inode free bit vectors.
type Allocator struct {
	data  *bitvector.Vector
	inode *bitvector.Vector
}

// New returns an Allocator over two freshly-zeroed vectors, as a format
// operation would start from. The vectors are backed by buffers the full
// size of the blocks reserved for them (not just the minimum needed for
// their bit count), matching what Load produces, so Flush can always write
// whole blocks.
func New() *Allocator {
	return &Allocator{
		data:  bitvector.FromBytes(make([]byte, layout.DataBitmapBlocks*layout.BlockSize), layout.TotalBlocks),
		inode: bitvector.FromBytes(make([]byte, layout.BlockSize), layout.MaxFiles),
	}
}

// Load reads the data and inode bitmap blocks from dev.
func Load(dev *block.Device) (*Allocator, error) {
	dataBuf := make([]byte, layout.DataBitmapBlocks*layout.BlockSize)
	for b := 0; b < layout.DataBitmapBlocks; b++ {
		if err := dev.ReadBlock(block.ID(layout.DataBitmapStart+b), dataBuf[b*layout.BlockSize:(b+1)*layout.BlockSize]); err != nil {
			return nil, err
		}
	}
	inodeBuf := make([]byte, layout.BlockSize)
	if err := dev.ReadBlock(block.ID(layout.InodeBitmapBlock), inodeBuf); err != nil {
		return nil, err
	}
	return &Allocator{
		data:  bitvector.FromBytes(dataBuf, layout.TotalBlocks),
		inode: bitvector.FromBytes(inodeBuf, layout.MaxFiles),
	}, nil
}

// Flush writes both bitmaps back to dev.
func (a *Allocator) Flush(dev *block.Device) error {
	data := a.data.Bytes()
	for b := 0; b < layout.DataBitmapBlocks; b++ {
		if err := dev.WriteBlock(block.ID(layout.DataBitmapStart+b), data[b*layout.BlockSize:(b+1)*layout.BlockSize]); err != nil {
			return err
		}
	}
	return dev.WriteBlock(block.ID(layout.InodeBitmapBlock), a.inode.Bytes())
}

// ReserveSystemBlocks marks every block up to layout.DataStart as used, and
// reserves the root inode's bit. Per SPEC_FULL.md §3 the inode bitmap uses
// bit (n-1) for inode n, so the root (inode 1) reserves bit 0. Called once
// by the formatter when building a fresh image.
func (a *Allocator) ReserveSystemBlocks() {
	for i := 0; i < layout.DataStart; i++ {
		a.data.Set(i)
	}
	a.inode.Set(layout.RootInodeNum - 1)
}

// AllocDataBlock finds and marks used the first free data block at or past
// layout.DataStart. Returns ErrNoSpace if none remain.
func (a *Allocator) AllocDataBlock() (int, error) {
	idx := a.data.FindFirstClear(layout.DataStart, layout.TotalBlocks)
	if idx == bitvector.None {
		return 0, errors.ErrNoSpace.WithMessage("no free data blocks")
	}
	a.data.Set(idx)
	return idx, nil
}

// FreeDataBlock marks a data block as free again. Ids outside
// [layout.DataStart, layout.TotalBlocks) are ignored.
func (a *Allocator) FreeDataBlock(idx int) {
	if idx < layout.DataStart || idx >= layout.TotalBlocks {
		return
	}
	a.data.Clear(idx)
}

// AllocInode finds the first free bit and marks it used, returning the
// inode number (bit i ⇔ inode i+1, per SPEC_FULL.md §3). Returns
// ErrNoSpace if the inode table is full.
func (a *Allocator) AllocInode() (int, error) {
	idx := a.inode.FindFirstClear(0, layout.MaxFiles)
	if idx == bitvector.None {
		return 0, errors.ErrNoSpace.WithMessage("no free inodes")
	}
	a.inode.Set(idx)
	return idx + 1, nil
}

// FreeInode marks an inode number as free again.
func (a *Allocator) FreeInode(num int) {
	a.inode.Clear(num - 1)
}

// CountFreeDataBlocks returns the number of unused data blocks.
func (a *Allocator) CountFreeDataBlocks() int {
	free := 0
	for i := layout.DataStart; i < layout.TotalBlocks; i++ {
		if !a.data.Test(i) {
			free++
		}
	}
	return free
}

// CountFreeInodes returns the number of unused inode numbers.
func (a *Allocator) CountFreeInodes() int {
	free := 0
	for i := 0; i < layout.MaxFiles; i++ {
		if !a.inode.Test(i) {
			free++
		}
	}
	return free
}
