package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/elifsorguc/bfs-fuse/errors"
)

// Encode serializes the superblock into a zero-padded block-sized buffer,
// little-endian, per SPEC_FULL.md §3/§6 (Design Note Q2). It writes
// directly into a pre-sized destination slice via bytewriter rather than
// growing a bytes.Buffer, since the destination is always exactly one
// block.
func (sb Superblock) Encode() []byte {
	buf := make([]byte, BlockSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, sb)
	return buf
}

// DecodeSuperblock parses a block-sized buffer into a Superblock.
func DecodeSuperblock(block []byte) (Superblock, error) {
	var sb Superblock
	r := bytes.NewReader(block)
	if err := binary.Read(r, binary.LittleEndian, &sb); err != nil {
		return Superblock{}, errors.ErrIO.WrapError(err)
	}
	return sb, nil
}
