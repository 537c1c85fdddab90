package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/dagnotify/cli/server"
	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "dagnode\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a dagnode instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "dagnode"
	ctl.Version = config.Version
	ctl.Usage = "DAG node notification and RPC service"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	return ctl
}
