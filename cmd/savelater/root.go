package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/savelater/internal/app"
	"github.com/MrSnakeDoc/savelater/internal/config"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/repository"
)

// skipClient marks commands that never open the local store.
const skipClient = "skip-client"

// cli holds what every command needs once the root pre-run has opened
// the local store.
type cli struct {
	storeFlag string
	verbose   bool

	logger logger.Logger
	client *app.Client
	out    *printer
}

func (c *cli) repo() *repository.Repository { return c.client.Repository() }

// run executes one command line and always releases the local store.
func run(args []string, stdout, stderr io.Writer) error {
	root, c := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "savelater",
		Short: "Save links for later, offline first",
		Long: `savelater keeps a list of links to read later.

Every change is saved on this device first and pushed to the remote store
when one is configured (SAVELATER_REMOTE_URL and SAVELATER_OWNER).
Nothing is lost while offline: unsynced changes go up on the next sync.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.out = newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if cmd.Annotations[skipClient] != "" {
				return nil
			}
			return c.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.storeFlag, "store", "", "local store: sqlite, redis or memory (overrides SAVELATER_STORE)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr at debug level")

	root.AddCommand(
		newListCmd(c),
		newFindCmd(c),
		newAddCmd(c),
		newVisitCmd(c),
		newEditCmd(c),
		newRmCmd(c),
		newImportCmd(c),
		newSyncCmd(c),
		newWipeCmd(c),
		newDaemonCmd(c),
		newVersionCmd(),
	)
	return root, c
}

func (c *cli) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if c.storeFlag != "" {
		cfg.Store = c.storeFlag
	}

	opts := logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLog, File: cfg.LogFile}
	if c.verbose {
		opts = logger.Options{Level: "debug", Pretty: true}
	}
	c.logger = logger.NewWithOptions(opts)

	client, err := app.NewClient(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

func (c *cli) close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	_ = c.logger.Sync()
	if err != nil {
		return fmt.Errorf("failed to close local store: %w", err)
	}
	return nil
}

// syncAfterChange pushes a change right away, like the app does after
// every edit. Failures only print a notice: the change is saved locally.
func (c *cli) syncAfterChange(ctx context.Context) {
	if !c.client.SyncEnabled() {
		return
	}
	if _, rep := c.repo().Sync(ctx); rep.Failed() {
		c.out.warn("saved on this device, will sync later")
	}
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
