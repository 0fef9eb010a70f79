package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elifsorguc/bfs-fuse/format"
	"github.com/elifsorguc/bfs-fuse/fs"
	"github.com/elifsorguc/bfs-fuse/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshImage(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "disk1")
	require.NoError(t, format.Format(path))
	return path
}

func mounted(t *testing.T) *fs.Core {
	core := fs.New(nil)
	require.NoError(t, core.Mount(freshImage(t)))
	t.Cleanup(func() { core.Unmount() })
	return core
}

func TestMountRejectsUnformattedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(path, make([]byte, layout.TotalBlocks*layout.BlockSize), 0o644))

	core := fs.New(nil)
	err := core.Mount(path)
	assert.Error(t, err)
}

func TestReadDirOnFreshMountListsDotEntries(t *testing.T) {
	core := mounted(t)
	names, err := core.ReadDir()
	require.NoError(t, err)
	assert.Equal(t, []string{".", ".."}, names)
}

func TestCreateGetAttrReadDir(t *testing.T) {
	core := mounted(t)

	attr, err := core.Create("notes.txt", 0o644)
	require.NoError(t, err)
	assert.Equal(t, int64(0), attr.Size)

	got, err := core.GetAttr("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, attr.InodeNum, got.InodeNum)

	names, err := core.ReadDir()
	require.NoError(t, err)
	assert.Contains(t, names, "notes.txt")
}

func TestWriteReadRoundTrip(t *testing.T) {
	core := mounted(t)
	_, err := core.Create("a.txt", 0o644)
	require.NoError(t, err)

	handle, err := core.Open("a.txt")
	require.NoError(t, err)

	n, err := core.Write(handle, 0, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	buf := make([]byte, 7)
	n, err = core.Read(handle, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf[:n]))
}

func TestCreateRejectsOverlongName(t *testing.T) {
	core := mounted(t)
	before, err := core.StatFS()
	require.NoError(t, err)

	_, err = core.Create(string(make([]byte, layout.FilenameLen)), 0o644)
	assert.Error(t, err)

	after, err := core.StatFS()
	require.NoError(t, err)
	assert.Equal(t, before.FreeInodes, after.FreeInodes)
}

func TestUnlinkRemovesEntry(t *testing.T) {
	core := mounted(t)
	_, err := core.Create("gone.txt", 0o644)
	require.NoError(t, err)

	require.NoError(t, core.Unlink("gone.txt"))
	_, err = core.GetAttr("gone.txt")
	assert.Error(t, err)
}

func TestRenameUpdatesLookup(t *testing.T) {
	core := mounted(t)
	_, err := core.Create("old.txt", 0o644)
	require.NoError(t, err)

	require.NoError(t, core.Rename("old.txt", "new.txt"))
	_, err = core.GetAttr("old.txt")
	assert.Error(t, err)
	_, err = core.GetAttr("new.txt")
	assert.NoError(t, err)
}

func TestUtimensUpdatesCtimeAndMtime(t *testing.T) {
	core := mounted(t)
	_, err := core.Create("touched.txt", 0o644)
	require.NoError(t, err)

	atime := time.Unix(1700000000, 0)
	mtime := time.Unix(1700000100, 0)
	require.NoError(t, core.Utimens("touched.txt", atime, mtime))

	attr, err := core.GetAttr("touched.txt")
	require.NoError(t, err)
	assert.Equal(t, atime.Unix(), attr.Ctime.Unix())
	assert.Equal(t, mtime.Unix(), attr.Mtime.Unix())
}

func TestAccessReportsExistence(t *testing.T) {
	core := mounted(t)
	assert.Error(t, core.Access("missing.txt"))
	_, err := core.Create("present.txt", 0o644)
	require.NoError(t, err)
	assert.NoError(t, core.Access("present.txt"))
}

func TestStatFSReflectsUsage(t *testing.T) {
	core := mounted(t)
	before, err := core.StatFS()
	require.NoError(t, err)

	_, err = core.Create("f.txt", 0o644)
	require.NoError(t, err)

	after, err := core.StatFS()
	require.NoError(t, err)
	assert.Equal(t, before.FreeInodes-1, after.FreeInodes)
}

func TestListCSVIncludesCreatedFiles(t *testing.T) {
	core := mounted(t)
	_, err := core.Create("report.txt", 0o644)
	require.NoError(t, err)

	csv, err := core.ListCSV()
	require.NoError(t, err)
	assert.Contains(t, csv, "report.txt")
	assert.Contains(t, csv, "name")
}

func TestMountTwiceFails(t *testing.T) {
	path := freshImage(t)
	core := fs.New(nil)
	require.NoError(t, core.Mount(path))
	defer core.Unmount()

	err := core.Mount(path)
	assert.Error(t, err)
}
