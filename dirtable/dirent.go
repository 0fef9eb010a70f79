// Package dirtable implements the single flat root directory: a fixed
// array of name/inode-number slots packed into the root directory table
// blocks, grounded on disko's drivers/unixv1/dirents.go (DirectoryEntry,
// fixed-width name field) and on make_bfcyedek.c's root-directory
// initialization (the "." and ".." entries written at format time).
package dirtable

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/layout"
)

// Entry is one slot of the directory table. InodeNum of 0 marks a free
// slot; Name is only meaningful when InodeNum != 0.
type Entry struct {
	Name     string
	InodeNum int32
}

// rawEntry is the exact on-disk record: a fixed FilenameLen-byte NUL-padded
// name, the inode number, and reserved padding out to DirentRecordSize
// bytes.
type rawEntry struct {
	Name     [layout.FilenameLen]byte
	InodeNum int32
	Reserved [layout.DirentRecordSize - layout.FilenameLen - 4]byte
}

func (e Entry) toRaw() (rawEntry, error) {
	if len(e.Name) >= layout.FilenameLen {
		return rawEntry{}, errors.ErrInvalid.WithMessage("filename too long")
	}
	var raw rawEntry
	copy(raw.Name[:], e.Name)
	raw.InodeNum = e.InodeNum
	return raw, nil
}

func fromRaw(raw rawEntry) Entry {
	name := raw.Name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Entry{Name: string(name), InodeNum: raw.InodeNum}
}

// Encode serializes e to a DirentRecordSize-byte buffer.
func (e Entry) Encode() ([]byte, error) {
	raw, err := e.toRaw()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, layout.DirentRecordSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, raw)
	return buf, nil
}

// Decode parses a DirentRecordSize-byte buffer into an Entry.
func Decode(data []byte) (Entry, error) {
	var raw rawEntry
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Entry{}, errors.ErrIO.WrapError(err)
	}
	return fromRaw(raw), nil
}

// Free reports whether this slot holds no entry.
func (e Entry) Free() bool {
	return e.InodeNum == 0
}
