// Package fs implements FSCore, the single facade a kernel bridge (out of
// scope for this module) would call into for every filesystem operation.
// It is grounded on disko's driver/driver.go BaseDriver (one struct gating
// every operation behind isMounted, with a resident in-memory copy of the
// metadata that gets written back on Unmount) and on
// drivers/unixv1/driver.go's Mount/Unmount/GetFSInfo.
package fs

import (
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/elifsorguc/bfs-fuse/alloc"
	"github.com/elifsorguc/bfs-fuse/block"
	"github.com/elifsorguc/bfs-fuse/dirtable"
	"github.com/elifsorguc/bfs-fuse/errors"
	"github.com/elifsorguc/bfs-fuse/fileio"
	"github.com/elifsorguc/bfs-fuse/inode"
	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/elifsorguc/bfs-fuse/logging"
)

// Attr is the attribute set GetAttr/Create/Utimens exchange with the
// bridge, independent of the on-disk inode record.
type Attr struct {
	InodeNum int32
	Size     int64
	Perms    uint16
	Nlink    int32
	Ctime    time.Time
	Mtime    time.Time
	IsDir    bool
}

// FileHandle identifies an open file to Read/Write/Release. It is simply
// the inode number: this core has no per-open-instance state beyond what
// the inode itself already tracks.
type FileHandle int32

// Stat mirrors the handful of statfs(2) fields a bridge needs, grounded on
// disko's disko.FSStat (GetFSInfo).
type Stat struct {
	BlockSize   uint32
	TotalBlocks uint32
	FreeBlocks  uint32
	TotalInodes uint32
	FreeInodes  uint32
	MaxFilename uint32
}

// Core is the mounted filesystem: one backing device plus the resident
// in-memory metadata (superblock, inode table, directory table, allocator)
// that every operation reads and mutates under mu. The tables are written
// back to the device only by Unmount.
type Core struct {
	mu sync.Mutex

	dev   *block.Device
	sb    layout.Superblock
	inos  *inode.Table
	dir   *dirtable.Table
	alloc *alloc.Allocator

	mounted bool
	log     *logging.Logger
}

// New returns an unmounted Core. Call Mount before using it.
func New(log *logging.Logger) *Core {
	if log == nil {
		log = logging.Default()
	}
	return &Core{log: log}
}

// Mount opens path and validates the superblock, per SPEC_FULL.md §4.8:
// a backing file shorter than layout.TotalBlocks blocks, or any failure to
// validate the magic, block size, block count, or inode count, is reported
// as ErrInvalid rather than allowing a mismatched image to mount.
func (c *Core) Mount(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		return errors.ErrBusy.WithMessage("already mounted")
	}

	dev, err := block.Open(path, false, 0o644)
	if err != nil {
		return err
	}
	if dev.TotalBlocks() < layout.TotalBlocks {
		dev.Close()
		return errors.ErrInvalid.WithMessage("backing file is smaller than the fixed layout")
	}

	sbBuf := make([]byte, layout.BlockSize)
	if err := dev.ReadBlock(block.ID(layout.SuperblockNum), sbBuf); err != nil {
		dev.Close()
		return err
	}
	sb, err := layout.DecodeSuperblock(sbBuf)
	if err != nil {
		dev.Close()
		return err
	}
	if !sb.Validate() {
		dev.Close()
		return errors.ErrInvalid.WithMessage("not a valid filesystem image")
	}

	inos, err := inode.Load(dev)
	if err != nil {
		dev.Close()
		return err
	}
	dir, err := dirtable.Load(dev)
	if err != nil {
		dev.Close()
		return err
	}
	a, err := alloc.Load(dev)
	if err != nil {
		dev.Close()
		return err
	}

	c.dev = dev
	c.sb = sb
	c.inos = inos
	c.dir = dir
	c.alloc = a
	c.mounted = true
	c.log.Infof("mounted %s (%d blocks, %d inodes)", path, sb.TotalBlocks, sb.InodeCount)
	return nil
}

// Unmount flushes every resident table back to the device and closes it.
// Flush errors across the tables are aggregated with go-multierror rather
// than stopping at the first one, so a failure writing the directory table
// doesn't hide a failure writing the inode table.
func (c *Core) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return errors.ErrInvalid.WithMessage("not mounted")
	}

	var result *multierror.Error
	if err := c.inos.Flush(c.dev); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.dir.Flush(c.dev); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.alloc.Flush(c.dev); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.dev.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	c.mounted = false
	c.log.Infof("unmounted")
	return result.ErrorOrNil()
}

func (c *Core) requireMounted() error {
	if !c.mounted {
		return errors.ErrInvalid.WithMessage("not mounted")
	}
	return nil
}

func attrFromInode(num int32, ino inode.Inode) Attr {
	return Attr{
		InodeNum: num,
		Size:     int64(ino.Size),
		Perms:    ino.Perms,
		Nlink:    ino.Refcount,
		Ctime:    time.Unix(ino.Ctime, 0),
		Mtime:    time.Unix(ino.Mtime, 0),
		IsDir:    num == layout.RootInodeNum,
	}
}

// GetAttr returns the attributes of name, or of the root directory when
// name is "".
func (c *Core) GetAttr(name string) (Attr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return Attr{}, err
	}

	if name == "" {
		return Attr{InodeNum: layout.RootInodeNum, IsDir: true, Perms: 0o755, Nlink: 2}, nil
	}

	entry, err := c.dir.Lookup(name)
	if err != nil {
		return Attr{}, err
	}
	ino, err := c.inos.Get(int(entry.InodeNum))
	if err != nil {
		return Attr{}, err
	}
	return attrFromInode(entry.InodeNum, ino), nil
}

// ReadDir lists the single root directory: "." and ".." first, then every
// live entry in slot order. There are no subdirectories for "." and ".." to
// resolve to anything other than the root itself, so unlike the other
// entries they are synthesized here rather than occupying a directory-table
// slot.
func (c *Core) ReadDir() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return nil, err
	}

	entries := c.dir.List()
	names := make([]string, 0, len(entries)+2)
	names = append(names, ".", "..")
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Create makes a new empty regular file named name with the given
// permission bits.
func (c *Core) Create(name string, perms uint16) (Attr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return Attr{}, err
	}
	if err := dirtable.ValidateName(name); err != nil {
		return Attr{}, err
	}

	num, err := c.alloc.AllocInode()
	if err != nil {
		return Attr{}, err
	}
	ino := inode.NewFile(perms, time.Now())
	if err := c.dir.Add(name, int32(num)); err != nil {
		c.alloc.FreeInode(num)
		return Attr{}, err
	}
	if err := c.inos.Set(num, ino); err != nil {
		c.dir.Remove(name)
		c.alloc.FreeInode(num)
		return Attr{}, err
	}
	return attrFromInode(int32(num), ino), nil
}

// Unlink removes name and releases all of its blocks and its inode.
func (c *Core) Unlink(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return err
	}

	entry, err := c.dir.Lookup(name)
	if err != nil {
		return err
	}
	ino, err := c.inos.Get(int(entry.InodeNum))
	if err != nil {
		return err
	}
	if err := fileio.FreeAll(c.dev, c.alloc, &ino); err != nil {
		return err
	}
	if err := c.dir.Remove(name); err != nil {
		return err
	}
	c.alloc.FreeInode(int(entry.InodeNum))
	return c.inos.Set(int(entry.InodeNum), inode.Zero())
}

// Rename moves oldName to newName in place; the inode number and contents
// are unchanged.
func (c *Core) Rename(oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return err
	}
	return c.dir.Rename(oldName, newName)
}

// Open resolves name to a FileHandle. The core does no permission checking
// of its own beyond existence; Access answers that question separately.
func (c *Core) Open(name string) (FileHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return 0, err
	}
	entry, err := c.dir.Lookup(name)
	if err != nil {
		return 0, err
	}
	return FileHandle(entry.InodeNum), nil
}

// Read reads up to len(buf) bytes at offset from the file behind handle.
func (c *Core) Read(handle FileHandle, offset int64, buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return 0, err
	}
	ino, err := c.inos.Get(int(handle))
	if err != nil {
		return 0, err
	}
	return fileio.Read(c.dev, ino, offset, buf)
}

// Write writes data at offset to the file behind handle, growing it (and
// allocating blocks) as needed.
func (c *Core) Write(handle FileHandle, offset int64, data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return 0, err
	}
	ino, err := c.inos.Get(int(handle))
	if err != nil {
		return 0, err
	}
	// fileio.Write mutates ino in place (size, mtime, any newly resolved
	// block pointers) even when it returns an error partway through, so the
	// inode is stored back into the table regardless: an ENOSPC/EIO midway
	// through a write
	// leaks the already-allocated blocks (accepted by SPEC_FULL.md §4.3/§4.5)
	// but must not also orphan them by dropping the pointers that reference
	// the bytes actually written.
	n, writeErr := fileio.Write(c.dev, c.alloc, &ino, offset, data)
	if err := c.inos.Set(int(handle), ino); err != nil {
		if writeErr != nil {
			return n, writeErr
		}
		return n, err
	}
	return n, writeErr
}

// Utimens updates the recorded access and modification times for name.
// Per SPEC_FULL.md §4.6, atime is stored in inode.ctime (this layout has no
// separate atime field, matching getattr's "atime = ctime = inode.ctime").
func (c *Core) Utimens(name string, atime, mtime time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return err
	}
	entry, err := c.dir.Lookup(name)
	if err != nil {
		return err
	}
	ino, err := c.inos.Get(int(entry.InodeNum))
	if err != nil {
		return err
	}
	ino.Ctime = atime.Unix()
	ino.Mtime = mtime.Unix()
	return c.inos.Set(int(entry.InodeNum), ino)
}

// Access reports whether name exists; this core does not implement a
// multi-user permission model, so it checks existence only.
func (c *Core) Access(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return err
	}
	_, err := c.dir.Lookup(name)
	return err
}

// Release is a no-op beyond validating the handle: this core keeps no
// per-open state that needs tearing down.
func (c *Core) Release(handle FileHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return err
	}
	_, err := c.inos.Get(int(handle))
	return err
}

// StatFS reports aggregate space and inode usage, grounded on disko's
// GetFSInfo/disko.FSStat.
func (c *Core) StatFS() (Stat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return Stat{}, err
	}

	return Stat{
		BlockSize:   layout.BlockSize,
		TotalBlocks: uint32(c.sb.TotalBlocks),
		FreeBlocks:  uint32(c.alloc.CountFreeDataBlocks()),
		TotalInodes: uint32(c.sb.InodeCount),
		FreeInodes:  uint32(c.alloc.CountFreeInodes()),
		MaxFilename: layout.FilenameLen - 1,
	}, nil
}
