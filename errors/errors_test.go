package errors_test

import (
	"errors"
	"syscall"
	"testing"

	bfserrors "github.com/elifsorguc/bfs-fuse/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithMessage(t *testing.T) {
	err := bfserrors.ErrNotFound.WithMessage("foo")
	assert.Equal(t, "no such file or directory: foo", err.Error())
	assert.True(t, bfserrors.Is(err, bfserrors.ErrNotFound))
}

func TestWrapError(t *testing.T) {
	original := errors.New("disk exploded")
	err := bfserrors.ErrIO.WrapError(original)
	assert.ErrorIs(t, err, original)
	assert.True(t, bfserrors.Is(err, bfserrors.ErrIO))
}

func TestErrnoMapping(t *testing.T) {
	assert.Equal(t, syscall.ENOENT, bfserrors.ErrNotFound.Errno())
	assert.Equal(t, syscall.EEXIST, bfserrors.ErrExists.Errno())
	assert.Equal(t, syscall.ENOSPC, bfserrors.ErrNoSpace.Errno())
	assert.Equal(t, syscall.EFBIG, bfserrors.ErrTooLarge.Errno())
}

func TestToErrno(t *testing.T) {
	assert.Equal(t, 0, bfserrors.ToErrno(nil))

	err := bfserrors.ErrNotFound.WithMessage("missing")
	assert.Equal(t, -int(syscall.ENOENT), bfserrors.ToErrno(err))

	assert.Equal(t, -int(syscall.EIO), bfserrors.ToErrno(errors.New("plain")))
}
