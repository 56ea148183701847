package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/sources/homepage"
	"github.com/MrSnakeDoc/savelater/internal/version"
)

func newListCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved links, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.repo().FetchAll(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			c.out.links(list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newFindCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>...",
		Short: "Search saved links by title, host and path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.ParseQuery(strings.Join(args, " "))
			candidates := domain.Rank(q, c.repo().FetchAll(cmd.Context()))
			if len(candidates) == 0 {
				writeLine(cmd.OutOrStdout(), "No match for %q.", q.Raw)
				return nil
			}
			for _, cand := range candidates {
				c.out.link(cand.Hyperlink)
			}
			return nil
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := c.repo().Create(ctx, domain.NewHyperlink{URL: args[0], Title: title})
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			var added domain.Hyperlink
			for _, h := range list {
				if h.URL == url && (added.ID == "" || h.CreatedOn.After(added.CreatedOn)) {
					added = h
				}
			}
			writeLine(cmd.OutOrStdout(), "Saved %s %s", added.ID, url)

			c.syncAfterChange(ctx)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "display title")
	return cmd
}

func newVisitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <id>",
		Short: "Mark a link as read and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := c.repo().Visit(ctx, args[0])
			if err != nil {
				return err
			}
			for _, h := range list {
				if h.ID == args[0] {
					writeLine(cmd.OutOrStdout(), "%s", h.URL)
				}
			}
			c.syncAfterChange(ctx)
			return nil
		},
	}
}

func newEditCmd(c *cli) *cobra.Command {
	var (
		url, title string
		unread     bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the URL or title of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := domain.Patch{ID: args[0]}
			if cmd.Flags().Changed("url") {
				p.URL = &url
			}
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if unread {
				visited := false
				p.Visited = &visited
			}
			if p.IsEmpty() {
				return errors.New("nothing to change: use --url, --title or --unread")
			}

			ctx := cmd.Context()
			if _, err := c.repo().Update(ctx, p); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Updated %s", args[0])
			c.syncAfterChange(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "new URL")
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title (empty to clear)")
	cmd.Flags().BoolVar(&unread, "unread", false, "mark as not read yet")
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete links",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, id := range args {
				if _, err := c.repo().Delete(ctx, id); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), "Deleted %s", id)
			}
			c.syncAfterChange(ctx)
			return nil
		},
	}
}

func newImportCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import links from a Homepage bookmarks.yaml or services.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := homepage.NewLoader(args[0])

			kind := homepage.Kind(format)
			if format == "auto" {
				detected, err := loader.Detect()
				if err != nil {
					return err
				}
				kind = detected
			}

			var (
				links []domain.NewHyperlink
				err   error
			)
			mapper := homepage.NewMapper()
			switch kind {
			case homepage.KindBookmarks:
				cfg, loadErr := loader.LoadBookmarks()
				if loadErr != nil {
					return loadErr
				}
				links, err = mapper.MapBookmarks(cfg)
			case homepage.KindServices:
				cfg, loadErr := loader.LoadServices()
				if loadErr != nil {
					return loadErr
				}
				links, err = mapper.MapServices(cfg)
			default:
				return fmt.Errorf("unknown format %q (want auto, bookmarks or services)", format)
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, added, err := c.repo().Import(ctx, links)
			if err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Imported %d of %d links", added, len(links))
			if added > 0 {
				c.syncAfterChange(ctx)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "file format: auto, bookmarks or services")
	return cmd
}

func newSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local changes and pull the remote list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.client.SyncEnabled() {
				c.out.warn("sync disabled: set SAVELATER_REMOTE_URL and SAVELATER_OWNER")
				return nil
			}

			_, rep := c.repo().Sync(cmd.Context())
			if rep.Err != nil {
				c.out.warn("sync incomplete: %v", rep.Err)
			}
			c.out.report(rep)
			return nil
		},
	}
}

func newWipeCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every local record, unsynced changes included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to wipe without --yes")
			}
			if err := c.repo().Wipe(cmd.Context()); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Local records wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func newDaemonCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync in the background until interrupted (SIGHUP syncs now)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.client.RunDaemon(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipClient: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			writeLine(cmd.OutOrStdout(), "%s", version.String("savelater"))
			return nil
		},
	}
}
