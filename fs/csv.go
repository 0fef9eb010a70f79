package fs

import (
	"github.com/gocarina/gocsv"
)

// dirListingRow is one row of a ListCSV report.
type dirListingRow struct {
	Name  string `csv:"name"`
	Inode int32  `csv:"inode"`
	Size  int64  `csv:"size"`
	Perms uint16 `csv:"perms"`
}

// ListCSV renders the root directory as CSV, one row per file, grounded on
// disko's disks/disks.go use of gocsv for tabular disk metadata. It backs
// `blockfsd ls --image foo`, an offline report in a format other tools can
// ingest directly.
func (c *Core) ListCSV() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireMounted(); err != nil {
		return "", err
	}

	entries := c.dir.List()
	rows := make([]dirListingRow, 0, len(entries))
	for _, e := range entries {
		ino, err := c.inos.Get(int(e.InodeNum))
		if err != nil {
			return "", err
		}
		rows = append(rows, dirListingRow{
			Name:  e.Name,
			Inode: e.InodeNum,
			Size:  int64(ino.Size),
			Perms: ino.Perms,
		})
	}

	return gocsv.MarshalString(&rows)
}
