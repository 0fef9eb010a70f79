package bitvector_test

import (
	"testing"

	"github.com/elifsorguc/bfs-fuse/bitvector"
	"github.com/stretchr/testify/assert"
)

func TestSetClearTest(t *testing.T) {
	v := bitvector.New(16)
	assert.False(t, v.Test(3))
	v.Set(3)
	assert.True(t, v.Test(3))
	v.Clear(3)
	assert.False(t, v.Test(3))
}

func TestFindFirstClear(t *testing.T) {
	v := bitvector.New(8)
	for i := 0; i < 5; i++ {
		v.Set(i)
	}
	assert.Equal(t, 5, v.FindFirstClear(0, 8))
}

func TestFindFirstClearNoneLeft(t *testing.T) {
	v := bitvector.New(4)
	for i := 0; i < 4; i++ {
		v.Set(i)
	}
	assert.Equal(t, bitvector.None, v.FindFirstClear(0, 4))
}

func TestFromBytesSharesStorage(t *testing.T) {
	buf := make([]byte, 2)
	v := bitvector.FromBytes(buf, 16)
	v.Set(0)
	assert.Equal(t, byte(1), buf[0])
}
