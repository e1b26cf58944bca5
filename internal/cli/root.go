// Package cli implements the aw-cli commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-artificial-world/internal/config"
	"github.com/goliatone/go-artificial-world/internal/logs"
	"github.com/goliatone/go-artificial-world/pkg/activity"
	"github.com/goliatone/go-artificial-world/pkg/docstore"
	"github.com/goliatone/go-artificial-world/pkg/tools"
)

// Version is printed by --version.
const Version = "0.1.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Journal    bool
	Actor      string
}

// NewRootCommand creates the aw-cli root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	var (
		showVersion bool
		buildTool   bool
	)

	cmd := &cobra.Command{
		Use:   "aw-cli",
		Short: "Artificial World document and template tooling",
		Long: `Manage the JSON documents an artificial world persists, resolve
templates against them, and exchange updates with a remote listener.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case showVersion:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
				return err
			case buildTool:
				if len(args) != 2 {
					return NewExitError(ExitCommandError, "--build-tool expects NAME and DESC")
				}
				return writeJSON(cmd.OutOrStdout(), tools.BuildUserTool(args[0], args[1], nil))
			case len(args) > 0:
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown command %q", args[0]))
			default:
				return cmd.Help()
			}
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "print the version and exit")
	cmd.Flags().BoolVar(&buildTool, "build-tool", false, "print the tool description for NAME DESC")

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&opts.Journal, "journal", true, "also log to the systemd journal when available")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "cli", "actor recorded on document activity")

	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewPatchCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))
	cmd.AddCommand(NewListenCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))

	return cmd
}

// runtime is the per-invocation wiring shared by subcommands.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	store  *docstore.FileStore
	close  func() error
}

func (o *RootOptions) open(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logs.SetLevel(level)

	logger, closeLog, err := logs.New(logs.Options{
		Terminal: cmd.ErrOrStderr(),
		Dir:      cfg.LoggingDir,
		Journal:  o.Journal,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open logs", err)
	}
	logger = logger.With("command", cmd.Name())

	emitter := activity.NewEmitter(activity.Hooks{activity.LogHook(logger)}, activity.Config{Enabled: true})
	store := docstore.New(cfg.Layout(),
		docstore.WithLogger(logger),
		docstore.WithArchiveCount(cfg.ArchiveCount),
		docstore.WithActivity(emitter),
		docstore.WithActor(o.Actor),
	)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		close:  closeLog,
	}, nil
}

// withRuntime opens the runtime, runs fn and closes the log file.
func (o *RootOptions) withRuntime(cmd *cobra.Command, fn func(*runtime) error) error {
	rt, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = rt.close()
	}()
	return fn(rt)
}
