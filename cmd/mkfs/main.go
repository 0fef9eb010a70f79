// Command mkfs creates or wipes a block filesystem image, grounded on
// disko's cmd/main.go (a single urfave/cli command wrapping one driver
// operation).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/elifsorguc/bfs-fuse/format"
)

func main() {
	app := &cli.App{
		Name:      "mkfs",
		Usage:     "Create or wipe a block filesystem image",
		ArgsUsage: "IMAGE_PATH",
		Action:    formatImage,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func formatImage(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "disk1"
	}
	if err := format.Format(path); err != nil {
		return err
	}
	fmt.Printf("Disk image %q initialized successfully.\n", path)
	return nil
}
