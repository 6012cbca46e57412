package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/wpmoo-org/uibuild/cmd/uibuild/commands"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	parser := kong.Parse(cli,
		kong.Name("uibuild"),
		kong.Description("Build the WPMoo UI stylesheets: compile, scope, stamp and serve."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := parser.Run(cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
		os.Exit(1)
	}
}
