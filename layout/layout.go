// Package layout holds the fixed on-disk geometry shared by the formatter
// and the mounted core, so the two can never drift apart (closes Design
// Note Q1: the inode bitmap lives at its own dedicated block, matching the
// formatter's layout exactly).
package layout

import "github.com/elifsorguc/bfs-fuse/block"

const (
	// BlockSize is the fixed size of a block, in bytes.
	BlockSize = block.Size

	// TotalBlocks is the fixed number of blocks in a freshly formatted
	// image (16 MiB).
	TotalBlocks = 4096

	// MaxFiles is the fixed number of inodes the image can hold.
	MaxFiles = 128

	// FilenameLen is the size, in bytes, of the NUL-terminated name field
	// in a directory entry.
	FilenameLen = 48

	// DirectBlocks is the number of direct block pointers per inode.
	DirectBlocks = 8

	// IndirectCapacity is the number of block ids that fit in one indirect
	// block (BlockSize / 4).
	IndirectCapacity = BlockSize / 4

	// MaxFileSize is the largest file this layout can address.
	MaxFileSize = (DirectBlocks + IndirectCapacity) * BlockSize

	// Fixed block assignment.
	SuperblockNum     = 0
	DataBitmapStart   = 1
	DataBitmapBlocks  = 2
	InodeBitmapBlock  = 3
	InodeTableStart   = 4
	InodeTableBlocks  = 8
	DirTableStart     = 12
	DirTableBlocks    = 2
	DataStart         = 14

	// InodeRecordSize is the exact on-disk width of one inode record:
	// InodeTableBlocks*BlockSize / MaxFiles bytes.
	InodeRecordSize = InodeTableBlocks * BlockSize / MaxFiles

	// DirentRecordSize is the exact on-disk width of one directory entry:
	// DirTableBlocks*BlockSize / MaxFiles bytes (one slot per inode).
	DirentRecordSize = DirTableBlocks * BlockSize / MaxFiles

	// RootInodeNum is the 1-based inode number of the root directory.
	RootInodeNum = 1

	// Magic distinguishes a formatted image from an unformatted or foreign
	// file; it is a supplement over the distilled spec (see SPEC_FULL.md §3).
	Magic = 0x42465331 // "BFS1"
)

// Superblock is the immutable-after-format descriptor written to block 0.
type Superblock struct {
	TotalBlocks  int32
	BlockSize    int32
	InodeCount   int32
	RootDirBlock int32
	Magic        int32
}

// Default returns the superblock a fresh format of this layout writes.
func Default() Superblock {
	return Superblock{
		TotalBlocks:  TotalBlocks,
		BlockSize:    BlockSize,
		InodeCount:   MaxFiles,
		RootDirBlock: DirTableStart,
		Magic:        Magic,
	}
}

// Validate checks the invariants Mount requires of a superblock read from
// disk.
func (sb Superblock) Validate() bool {
	return sb.Magic == Magic &&
		sb.BlockSize == BlockSize &&
		sb.TotalBlocks >= TotalBlocks &&
		sb.InodeCount == MaxFiles
}
