// Command agui-server serves the AG-UI bridge over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd(Version, os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("agui-server: %v", err))
		os.Exit(1)
	}
}
