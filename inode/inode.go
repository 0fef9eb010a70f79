// Package inode implements the fixed-size inode record and the packed
// inode table, grounded on disko's unixv1.RawInode/Inode split (a raw
// on-disk record plus a friendlier in-memory value) but adapted to this
// core's flat, block-indirected layout instead of UNIX v1's block list.
package inode

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/noxer/bytewriter"

	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/layout"
)

// Inode is the in-memory representation of one inode record. A Direct
// pointer or Indirect of 0 means "unallocated" (see SPEC_FULL.md §3).
type Inode struct {
	Size     int32
	Direct   [layout.DirectBlocks]int32
	Indirect int32
	Ctime    int64
	Mtime    int64
	Perms    uint16
	Refcount int32
}

// rawInode is the exact on-disk layout: the Inode fields in order, followed
// by zero-filled reserved padding out to layout.InodeRecordSize bytes. Using
// encoding/binary's field-by-field traversal (rather than Go's in-memory
// struct layout) keeps the format byte-exact and platform-independent, per
// Design Note Q2.
type rawInode struct {
	Size     int32
	Direct   [layout.DirectBlocks]int32
	Indirect int32
	Ctime    int64
	Mtime    int64
	Perms    uint16
	Refcount int32
	Reserved [layout.InodeRecordSize - (4 + 4*layout.DirectBlocks + 4 + 8 + 8 + 2 + 4)]byte
}

// Zero returns an Inode representing an unallocated slot.
func Zero() Inode {
	return Inode{}
}

// NewFile returns the Inode a create() writes for a brand-new regular file.
func NewFile(perms uint16, now time.Time) Inode {
	ts := now.Unix()
	return Inode{
		Perms:    perms,
		Ctime:    ts,
		Mtime:    ts,
		Refcount: 1,
	}
}

func (ino Inode) toRaw() rawInode {
	return rawInode{
		Size:     ino.Size,
		Direct:   ino.Direct,
		Indirect: ino.Indirect,
		Ctime:    ino.Ctime,
		Mtime:    ino.Mtime,
		Perms:    ino.Perms,
		Refcount: ino.Refcount,
	}
}

func fromRaw(raw rawInode) Inode {
	return Inode{
		Size:     raw.Size,
		Direct:   raw.Direct,
		Indirect: raw.Indirect,
		Ctime:    raw.Ctime,
		Mtime:    raw.Mtime,
		Perms:    raw.Perms,
		Refcount: raw.Refcount,
	}
}

// Encode serializes ino to an InodeRecordSize-byte buffer.
func (ino Inode) Encode() []byte {
	buf := make([]byte, layout.InodeRecordSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, ino.toRaw())
	return buf
}

// Decode parses an InodeRecordSize-byte buffer into an Inode.
func Decode(data []byte) (Inode, error) {
	var raw rawInode
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Inode{}, errors.ErrIO.WrapError(err)
	}
	return fromRaw(raw), nil
}

// IsAllocated reports whether this slot looks in use (a positive Refcount),
// as opposed to the all-zero "never used" pattern. FSCore treats the inode bitmap, not this heuristic, as the
// authoritative allocation record; this is only used by tests and debug
// tooling that don't have the bitmap handy.
func (ino Inode) IsAllocated() bool {
	return ino.Refcount > 0
}
