// Package app is a small cobra-based application scaffold: a CliOptions
// value contributes flags, a RunFunc carries the actual entrypoint, and
// App.Run wires the two into one cobra.Command.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Scott-fo/t3-clone/pkg/logger"
)

// CliOptions is anything that can register its own flags and validate/
// complete itself once cobra has parsed the command line.
type CliOptions interface {
	AddFlags(fs *pflag.FlagSet)
	Complete() error
}

// RunFunc is the application's actual entrypoint, invoked once options have
// been parsed and completed.
type RunFunc func(basename string) error

type Option func(*App)

func WithOptions(opts CliOptions) Option {
	return func(a *App) { a.options = opts }
}

func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// App bundles a name, a basename (the command's name, also passed to the
// RunFunc and used in the exit log line) and a cobra command built from the two.
type App struct {
	name        string
	basename    string
	description string
	options     CliOptions
	runFunc     RunFunc
	cmd         *cobra.Command
}

func NewApp(name, basename string, opts ...Option) *App {
	a := &App{name: name, basename: basename}
	for _, opt := range opts {
		opt(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.basename,
		Short:         a.name,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.options != nil {
				if err := a.options.Complete(); err != nil {
					return err
				}
			}
			if a.runFunc == nil {
				return nil
			}
			return a.runFunc(a.basename)
		},
	}

	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
		_ = viper.BindPFlags(cmd.Flags())
	}

	a.cmd = cmd
}

// Run executes the command, logging at fatal level and terminating the
// process on any error it returns, whatever its errorx kind.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		logger.Fatal("%s exited: %v", a.basename, err)
	}
}
