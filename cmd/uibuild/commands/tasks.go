package commands

import (
	"github.com/wpmoo-org/uibuild/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, build.TaskBuild)
}

// StylesCmd implements the 'styles' command.
type StylesCmd struct{}

func (s *StylesCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, build.TaskStyles)
}

// PicoScopeCmd implements the 'pico:scope' command.
type PicoScopeCmd struct{}

func (p *PicoScopeCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, build.TaskPicoScope)
}

// LicensesCmd implements the 'licenses' command.
type LicensesCmd struct{}

func (l *LicensesCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, build.TaskLicenses)
}

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, build.TaskClean)
}

// RunCmd runs arbitrary registered tasks, e.g. "uibuild run pico:scope licenses".
type RunCmd struct {
	Tasks []string `arg:"" name:"task" help:"Task names (styles, pico:scope, licenses, clean, build, default)"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	return runTasks(root, r.Tasks...)
}
