// Package ctl implements chatctl, the scriptable companion to the chatterm
// TUI. It shares the profile's credential store, so a login made in either
// tool is seen by the other.
package ctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/app"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/store"
)

type options struct {
	profile  string
	json     bool
	timeout  time.Duration
	logLevel string
}

// env is what a subcommand gets to work with.
type env struct {
	client *api.Client
	db     *store.DB
	jar    *api.PersistentJar
	cfg    *config.Config
	out    io.Writer
	json   bool
}

// Execute runs chatctl with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the chatctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "chatctl",
		Short: "Scriptable access to the chat backend",
		Long: `chatctl talks to the same backend as chatterm using the profile's
stored login. Use it to list users and groups, read conversations and send
messages from scripts.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.profile, "profile", "", "profile name (overrides config default)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "output in JSON format")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "overall request timeout")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "stderr log level")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newUsersCmd(opts),
		newMessagesCmd(opts),
		newSendCmd(opts),
		newGroupsCmd(opts),
		newGroupCmd(opts),
		newProfilesCmd(opts),
	)
	return root
}

// run wires the client module for the resolved profile, calls fn and tears
// everything down again.
func run(cmd *cobra.Command, opts *options, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	name := profile.Resolve(opts.profile)
	if err := profile.ValidateName(name); err != nil {
		return err
	}

	e := &env{cfg: cfg, out: cmd.OutOrStdout(), json: opts.json}
	a := fx.New(
		app.ClientModule(app.Params{Profile: name, Config: cfg, LogLevel: opts.logLevel, LogStderr: true}),
		fx.Populate(&e.client, &e.db, &e.jar),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = a.Stop(context.Background()) }()

	return fn(ctx, e)
}
