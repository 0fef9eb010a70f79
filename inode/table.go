package inode

import (
	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/layout"
)

// perBlock is how many fixed-size inode records fit in one block.
const perBlock = layout.BlockSize / layout.InodeRecordSize

// Table is the packed, fixed-size inode table: layout.MaxFiles slots held
// entirely in memory between Load and Flush, mirroring the way disko's
// InodeManager keeps its whole inode list resident for the lifetime of a
// mount (drivers/unixv1/inode.go).
type Table struct {
	entries [layout.MaxFiles]Inode
}

// NewTable returns a table of all-zero (unallocated) inodes, as a freshly
// formatted image would have.
func NewTable() *Table {
	return &Table{}
}

// Load reads the inode table blocks from dev and unpacks every record.
func Load(dev *block.Device) (*Table, error) {
	t := &Table{}
	buf := make([]byte, layout.BlockSize)
	for b := 0; b < layout.InodeTableBlocks; b++ {
		if err := dev.ReadBlock(block.ID(layout.InodeTableStart+b), buf); err != nil {
			return nil, err
		}
		for slot := 0; slot < perBlock; slot++ {
			idx := b*perBlock + slot
			off := slot * layout.InodeRecordSize
			ino, err := Decode(buf[off : off+layout.InodeRecordSize])
			if err != nil {
				return nil, err
			}
			t.entries[idx] = ino
		}
	}
	return t, nil
}

// Flush packs every record and writes the inode table blocks back to dev.
func (t *Table) Flush(dev *block.Device) error {
	buf := make([]byte, layout.BlockSize)
	for b := 0; b < layout.InodeTableBlocks; b++ {
		for slot := 0; slot < perBlock; slot++ {
			idx := b*perBlock + slot
			off := slot * layout.InodeRecordSize
			copy(buf[off:off+layout.InodeRecordSize], t.entries[idx].Encode())
		}
		if err := dev.WriteBlock(block.ID(layout.InodeTableStart+b), buf); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the inode at 1-based inode number num.
func (t *Table) Get(num int) (Inode, error) {
	if num < layout.RootInodeNum || num > layout.MaxFiles {
		return Inode{}, errors.ErrInvalid.WithMessage("inode number out of range")
	}
	return t.entries[num-1], nil
}

// Set overwrites the inode at 1-based inode number num.
func (t *Table) Set(num int, ino Inode) error {
	if num < layout.RootInodeNum || num > layout.MaxFiles {
		return errors.ErrInvalid.WithMessage("inode number out of range")
	}
	t.entries[num-1] = ino
	return nil
}
