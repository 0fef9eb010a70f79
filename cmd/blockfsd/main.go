// Command blockfsd mounts a block filesystem image and serves it. Wiring
// the mounted Core up to an actual kernel bridge (FUSE or otherwise) is
// out of scope for this module (see SPEC_FULL.md §1); this binary only
// proves out Mount/Unmount against a real image and reports the stats a
// bridge would need at mount time.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/elifsorguc/bfs-fuse/fs"
	"github.com/elifsorguc/bfs-fuse/logging"
)

func main() {
	imageFlag := &cli.StringFlag{
		Name:  "image",
		Value: "disk1",
		Usage: "path to the disk image to mount",
	}

	app := &cli.App{
		Name:   "blockfsd",
		Usage:  "Mount a block filesystem image",
		Flags:  []cli.Flag{imageFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "Print the root directory listing as CSV and exit",
				Flags:  []cli.Flag{imageFlag},
				Action: list,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func list(c *cli.Context) error {
	core := fs.New(logging.Default())
	if err := core.Mount(c.String("image")); err != nil {
		return err
	}
	defer core.Unmount()

	report, err := core.ListCSV()
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func serve(c *cli.Context) error {
	log := logging.Default()
	core := fs.New(log)

	imagePath := c.String("image")
	if err := core.Mount(imagePath); err != nil {
		return err
	}

	stat, err := core.StatFS()
	if err != nil {
		core.Unmount()
		return err
	}
	fmt.Printf(
		"mounted %s: %d/%d blocks free, %d/%d inodes free\n",
		imagePath, stat.FreeBlocks, stat.TotalBlocks, stat.FreeInodes, stat.TotalInodes,
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return core.Unmount()
}
