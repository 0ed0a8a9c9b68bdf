// meshveil encrypts meshes behind keyed decryption blend shapes.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/meshveil/internal/cli"
	"github.com/Faultbox/meshveil/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	c := cli.New(os.Stdout, os.Stderr, version)
	err := c.RootCommand().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
