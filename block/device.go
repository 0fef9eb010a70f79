// Package block provides a thin, unbuffered fixed-block-size view over a
// backing stream, the role disko's BlockStream plays for its drivers: an
// io.ReadWriteSeeker that looks, from the caller's side, like an array of
// fixed-size blocks.
package block

import (
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/bytesextra"

	"github.com/elifsorguc/bfs-fuse/errors"
)

// Size is the fixed block size used throughout the core.
const Size = 4096

// ID is a zero-based block index into the backing stream.
type ID uint32

// backing is the subset of *os.File this package needs, so Device can also
// be driven by an in-memory buffer (see OpenMemory) for fast tests.
type backing interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
	Sync() error
	Close() error
}

// Device wraps a backing stream, exposing read/write access in whole-block
// units. It does no caching of its own; every call seeks and round-trips to
// the underlying stream, so a write has reached the stream when the call
// returns. The stream is synced to stable storage only by Close.
type Device struct {
	stream      backing
	totalBlocks uint32
}

// Open opens (or creates, with the given mode, if missing) the backing file
// at path and wraps it as a Device. It does not validate the superblock;
// that is layout's and fs's job.
func Open(path string, create bool, mode os.FileMode) (*Device, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return nil, errors.ErrIO.WrapError(err)
	}

	dev := &Device{stream: f}
	if err := dev.refreshSize(); err != nil {
		f.Close()
		return nil, err
	}
	return dev, nil
}

// memBacking adapts an in-memory buffer to the backing interface. Unlike a
// real file it cannot be resized behind the already-constructed
// io.ReadWriteSeeker, so Truncate only accepts the size it was created
// with; OpenMemory always creates the buffer at its final size, so this
// never comes up in practice.
type memBacking struct {
	io.ReadWriteSeeker
	size int64
}

func (m memBacking) Truncate(size int64) error {
	if size != m.size {
		return errors.ErrInvalid.WithMessage("an in-memory device cannot be resized after creation")
	}
	return nil
}

func (memBacking) Sync() error  { return nil }
func (memBacking) Close() error { return nil }

// OpenMemory returns a Device backed entirely by memory (via
// github.com/xaionaro-go/bytesextra, the same wrapper disko's own test
// helpers use to turn a byte slice into an io.ReadWriteSeeker), pre-sized to
// numBlocks blocks. It is meant for tests that want a fresh image without
// touching the filesystem.
func OpenMemory(numBlocks uint32) *Device {
	size := int64(numBlocks) * Size
	buf := make([]byte, size)
	m := memBacking{ReadWriteSeeker: bytesextra.NewReadWriteSeeker(buf), size: size}
	return &Device{stream: m, totalBlocks: numBlocks}
}

func (d *Device) refreshSize() error {
	end, err := d.stream.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.ErrIO.WrapError(err)
	}
	d.totalBlocks = uint32(end / Size)
	return nil
}

// TotalBlocks returns the number of whole blocks currently in the backing
// stream.
func (d *Device) TotalBlocks() uint32 {
	return d.totalBlocks
}

// Truncate resizes the backing stream to exactly numBlocks blocks,
// zero-filling any new space. It is only used by the formatter.
func (d *Device) Truncate(numBlocks uint32) error {
	if err := d.stream.Truncate(int64(numBlocks) * Size); err != nil {
		return errors.ErrIO.WrapError(err)
	}
	d.totalBlocks = numBlocks
	return nil
}

func (d *Device) checkBounds(id ID) error {
	if uint32(id) >= d.totalBlocks {
		return errors.ErrIO.WithMessage(
			fmt.Sprintf("block %d not in range [0, %d)", id, d.totalBlocks),
		)
	}
	return nil
}

func (d *Device) seekToBlock(id ID) error {
	_, err := d.stream.Seek(int64(id)*Size, io.SeekStart)
	if err != nil {
		return errors.ErrIO.WrapError(err)
	}
	return nil
}

// ReadBlock fills buf (which must be exactly Size bytes) with the contents
// of block id. A short read is reported as ErrIO.
func (d *Device) ReadBlock(id ID, buf []byte) error {
	if len(buf) != Size {
		return errors.ErrInvalid.WithMessage("buffer must be exactly one block")
	}
	if err := d.checkBounds(id); err != nil {
		return err
	}
	if err := d.seekToBlock(id); err != nil {
		return err
	}

	n, err := io.ReadFull(d.stream, buf)
	if err != nil {
		return errors.ErrIO.WrapError(err)
	}
	if n != Size {
		return errors.ErrIO.WithMessage(
			fmt.Sprintf("short read of block %d: got %d of %d bytes", id, n, Size),
		)
	}
	return nil
}

// WriteBlock writes buf (which must be exactly Size bytes) to block id. A
// short write is reported as ErrIO.
func (d *Device) WriteBlock(id ID, buf []byte) error {
	if len(buf) != Size {
		return errors.ErrInvalid.WithMessage("buffer must be exactly one block")
	}
	if err := d.checkBounds(id); err != nil {
		return err
	}
	if err := d.seekToBlock(id); err != nil {
		return err
	}

	n, err := d.stream.Write(buf)
	if err != nil {
		return errors.ErrIO.WrapError(err)
	}
	if n != Size {
		return errors.ErrIO.WithMessage(
			fmt.Sprintf("short write of block %d: wrote %d of %d bytes", id, n, Size),
		)
	}
	return nil
}

// Close flushes and closes the backing stream.
func (d *Device) Close() error {
	if err := d.stream.Sync(); err != nil {
		return errors.ErrIO.WrapError(err)
	}
	return d.stream.Close()
}
