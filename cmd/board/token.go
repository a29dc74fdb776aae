package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/market-board/pkg/lifecycle"
	"github.com/JaimeStill/market-board/pkg/logging"
	"github.com/JaimeStill/market-board/pkg/storage"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API bearer token in local storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <value>",
		Short: "Store the bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd.Context(), opts, func(ctx context.Context, store storage.System, key string) error {
				if err := store.Set(ctx, key, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token stored under %q\n", key)
				return nil
			})
		},
	})

	var reveal bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd.Context(), opts, func(ctx context.Context, store storage.System, key string) error {
				token, err := storage.NewTokenSource(store, key).Token(ctx)
				if err != nil {
					return err
				}
				if token == "" {
					return fmt.Errorf("no token stored under %q", key)
				}
				if !reveal {
					token = mask(token)
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "print the full token")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd.Context(), opts, func(ctx context.Context, store storage.System, key string) error {
				if err := store.Delete(ctx, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token cleared from %q\n", key)
				return nil
			})
		},
	})

	return cmd
}

// withTokenStore opens the configured store for the duration of fn.
func withTokenStore(ctx context.Context, opts *rootOptions, fn func(context.Context, storage.System, string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelWarn}, os.Stderr)

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return err
	}

	lc := lifecycle.New()
	if err := store.Start(lc); err != nil {
		return err
	}
	defer lc.Shutdown(5 * time.Second)
	if err := lc.WaitForStartup(); err != nil {
		return err
	}

	return fn(ctx, store, storage.NewTokenSource(store, cfg.Client.TokenKey).Key())
}

func mask(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
