// Package cli is the taskflow command line: one-shot commands plus an
// interactive shell that walks the same screens as the web client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/locvowork/taskflow/internal/bootstrap"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run `taskflow login` first")

type cli struct {
	app     *bootstrap.App
	version string
}

// NewRootCmd builds the command tree over app.
func NewRootCmd(app *bootstrap.App, version string) *cobra.Command {
	c := &cli{app: app, version: version}

	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - organize your tasks from the terminal",
		Long: `TaskFlow signs you in to a todo server and manages your tasks.

Run without arguments to start the interactive shell.`,
		RunE:          c.runShell,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(c.loginCmd())
	rootCmd.AddCommand(c.registerCmd())
	rootCmd.AddCommand(c.logoutCmd())
	rootCmd.AddCommand(c.whoamiCmd())
	rootCmd.AddCommand(c.tasksCmd())
	rootCmd.AddCommand(c.statsCmd())
	rootCmd.AddCommand(c.exportCmd())
	rootCmd.AddCommand(c.shellCmd())
	rootCmd.AddCommand(c.versionCmd())
	return rootCmd
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context, app *bootstrap.App, version string) error {
	if err := NewRootCmd(app, version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s\n", c.version)
		},
	}
}

// workspace restores the stored session and loads its tasks.
func (c *cli) workspace(ctx context.Context) (*taskstore.Store, *domain.Credential, error) {
	cred, ok, err := c.app.Session.RestoreSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errNotSignedIn
	}
	store := c.app.NewTaskStore(cred)
	if err := store.LoadAll(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, cred, nil
}
