package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-artificial-world/pkg/listener"
	"github.com/goliatone/go-artificial-world/pkg/remote"
)

// NewPostCommand sends a document update to a listener.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:          "post <path> <json|->",
		Short:        "Post {data, path} to a remote listener",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				target := endpoint
				if target == "" {
					target = rt.cfg.RemoteURL
				}
				if target == "" {
					return NewExitError(ExitCommandError, "no endpoint: pass --url or set remote_url")
				}
				client, err := remote.New(target, remote.WithLogger(rt.logger))
				if err != nil {
					return WrapExitError(ExitCommandError, "remote endpoint", err)
				}

				resp, err := client.Post(cmd.Context(), args[0], data)
				if err != nil {
					var statusErr *remote.StatusError
					if errors.As(err, &statusErr) {
						return WrapExitError(ExitFailure, "listener rejected update", err)
					}
					return WrapExitError(ExitFailure, "post update", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&endpoint, "url", "", "listener endpoint (defaults to remote_url)")
	return cmd
}

// NewListenCommand serves POST /api until interrupted.
func NewListenCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "listen",
		Short:        "Accept document updates on POST " + listener.Route,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				if addr == "" {
					addr = rt.cfg.ListenAddr
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				handler := listener.NewHandler(rt.store, listener.WithLogger(rt.logger))
				if err := listener.Serve(ctx, addr, handler, rt.logger); err != nil {
					return WrapExitError(ExitFailure, "listen", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to listen_addr)")
	return cmd
}
