package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/tokenfee/feemap/cli/fees"
	"github.com/tokenfee/feemap/cli/server"
	"github.com/tokenfee/feemap/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "feemap\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a feemap instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "feemap"
	ctl.Version = config.Version
	ctl.Usage = "Minimum fee map node and tools"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, fees.NewCommands()...)
	return ctl
}
