package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-artificial-world/pkg/docstore"
)

func scopeFor(inputs bool) docstore.Scope {
	if inputs {
		return docstore.ScopeInputs
	}
	return docstore.ScopePrimary
}

// NewReadCommand prints a document, creating it as {} when missing.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	var inputs bool
	cmd := &cobra.Command{
		Use:          "read <name>",
		Short:        "Print a JSON document",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				doc, err := rt.store.Read(cmd.Context(), args[0], scopeFor(inputs))
				if err != nil {
					return WrapExitError(ExitFailure, "read "+args[0], err)
				}
				return writeJSON(cmd.OutOrStdout(), doc)
			})
		},
	}
	cmd.Flags().BoolVar(&inputs, "inputs", false, "read from the inputs directory")
	return cmd
}

// NewWriteCommand replaces a document with the JSON argument ("-" for stdin).
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	var inputs bool
	cmd := &cobra.Command{
		Use:          "write <name> <json|->",
		Short:        "Replace a JSON document, archiving the previous version",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				ok := rt.store.WriteScope(cmd.Context(), args[0], scopeFor(inputs), doc)
				return reportUpdate(cmd, args[0], ok)
			})
		},
	}
	cmd.Flags().BoolVar(&inputs, "inputs", false, "write to the inputs directory")
	return cmd
}

// NewPatchCommand deep-merges the JSON argument into a document.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "patch <name> <json|->",
		Short:        "Merge JSON into a document",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				return reportUpdate(cmd, args[0], rt.store.Patch(cmd.Context(), args[0], patch))
			})
		},
	}
}

func reportUpdate(cmd *cobra.Command, name string, ok bool) error {
	if err := writeJSON(cmd.OutOrStdout(), map[string]bool{"update": ok}); err != nil {
		return err
	}
	if !ok {
		return NewExitError(ExitFailure, "could not update "+name)
	}
	return nil
}

// NewQueryCommand prints the values a JSONPath selects from a document.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var inputs bool
	cmd := &cobra.Command{
		Use:          "query <name> <jsonpath>",
		Short:        "Select values from a document with JSONPath",
		Example:      `  aw-cli query settings.json '$.alarms[*].time'`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				values, err := rt.store.Query(cmd.Context(), args[0], scopeFor(inputs), args[1])
				if err != nil {
					return WrapExitError(ExitFailure, "query "+args[0], err)
				}
				if values == nil {
					values = []any{}
				}
				return writeJSON(cmd.OutOrStdout(), values)
			})
		},
	}
	cmd.Flags().BoolVar(&inputs, "inputs", false, "query the inputs directory")
	return cmd
}

// NewHistoryCommand lists archived versions of a document.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "history <name>",
		Short:        "List archived versions of a document, newest first",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				slots, err := rt.store.History(cmd.Context(), args[0])
				if err != nil {
					return WrapExitError(ExitFailure, "history "+args[0], err)
				}
				for _, slot := range slots {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", slot.Index, slot.Path); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// NewInitCommand creates the configured directories.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "Create the document, archive, image and logging directories",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				layout := rt.cfg.Layout()
				if err := docstore.Initialize(layout, rt.cfg.ExtraDirs()...); err != nil {
					return WrapExitError(ExitFailure, "create directories", err)
				}
				dirs := append([]string{layout.Root, layout.Inputs, layout.Archive}, rt.cfg.ExtraDirs()...)
				for _, dir := range dirs {
					rt.logger.Info("directory ready", "path", dir)
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), dir); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
