package dirtable

import (
	"strings"

	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/layout"
)

const perBlock = layout.BlockSize / layout.DirentRecordSize

// ValidateName enforces SPEC_FULL.md §4.4: a basename must be 1..47 bytes
// and must not contain a NUL byte.
func ValidateName(name string) error {
	if len(name) < 1 || len(name) > layout.FilenameLen-1 {
		return errors.ErrInvalid.WithMessage("basename must be 1-47 bytes: " + name)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.ErrInvalid.WithMessage("basename must not contain a NUL byte")
	}
	return nil
}

// Table is the packed, fixed-size root directory: layout.MaxFiles slots,
// one reserved per inode, held resident between Load and Flush the same
// way the inode table is.
type Table struct {
	entries [layout.MaxFiles]Entry
}

// NewTable returns a table of all-free slots.
func NewTable() *Table {
	return &Table{}
}

// Load reads the directory table blocks from dev and unpacks every slot.
func Load(dev *block.Device) (*Table, error) {
	t := &Table{}
	buf := make([]byte, layout.BlockSize)
	for b := 0; b < layout.DirTableBlocks; b++ {
		if err := dev.ReadBlock(block.ID(layout.DirTableStart+b), buf); err != nil {
			return nil, err
		}
		for slot := 0; slot < perBlock; slot++ {
			idx := b*perBlock + slot
			off := slot * layout.DirentRecordSize
			entry, err := Decode(buf[off : off+layout.DirentRecordSize])
			if err != nil {
				return nil, err
			}
			t.entries[idx] = entry
		}
	}
	return t, nil
}

// Flush packs every slot and writes the directory table blocks back to dev.
func (t *Table) Flush(dev *block.Device) error {
	buf := make([]byte, layout.BlockSize)
	for b := 0; b < layout.DirTableBlocks; b++ {
		for slot := 0; slot < perBlock; slot++ {
			idx := b*perBlock + slot
			off := slot * layout.DirentRecordSize
			raw, err := t.entries[idx].Encode()
			if err != nil {
				return err
			}
			copy(buf[off:off+layout.DirentRecordSize], raw)
		}
		if err := dev.WriteBlock(block.ID(layout.DirTableStart+b), buf); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the entry named name, or ErrNotFound.
func (t *Table) Lookup(name string) (Entry, error) {
	for _, e := range t.entries {
		if !e.Free() && e.Name == name {
			return e, nil
		}
	}
	return Entry{}, errors.ErrNotFound.WithMessage("no such file: " + name)
}

// List returns every occupied entry, in slot order.
func (t *Table) List() []Entry {
	out := make([]Entry, 0, layout.MaxFiles)
	for _, e := range t.entries {
		if !e.Free() {
			out = append(out, e)
		}
	}
	return out
}

// Add inserts a new entry into the first free slot. Returns ErrExists if
// name is already present, ErrNoSpace if the table is full.
func (t *Table) Add(name string, inodeNum int32) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := t.Lookup(name); err == nil {
		return errors.ErrExists.WithMessage("already exists: " + name)
	}
	for i := range t.entries {
		if t.entries[i].Free() {
			t.entries[i] = Entry{Name: name, InodeNum: inodeNum}
			return nil
		}
	}
	return errors.ErrNoSpace.WithMessage("directory table is full")
}

// Remove clears the slot holding name. Returns ErrNotFound if absent.
func (t *Table) Remove(name string) error {
	for i := range t.entries {
		if !t.entries[i].Free() && t.entries[i].Name == name {
			t.entries[i] = Entry{}
			return nil
		}
	}
	return errors.ErrNotFound.WithMessage("no such file: " + name)
}

// Rename moves the entry at oldName to newName in place, preserving its
// slot and inode number. Returns ErrNotFound if oldName is absent, or
// ErrExists if newName is already taken by a different entry.
func (t *Table) Rename(oldName, newName string) error {
	idx := -1
	for i := range t.entries {
		if !t.entries[i].Free() && t.entries[i].Name == oldName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.ErrNotFound.WithMessage("no such file: " + oldName)
	}
	if oldName == newName {
		return nil
	}
	if err := ValidateName(newName); err != nil {
		return err
	}
	if _, err := t.Lookup(newName); err == nil {
		return errors.ErrExists.WithMessage("already exists: " + newName)
	}
	t.entries[idx].Name = newName
	return nil
}
