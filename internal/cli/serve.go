package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/constellation/internal/server"
	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/watch"
)

const defaultAddr = "127.0.0.1:8080"

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		mode    string
		origins string
		mongo   bool
		noCache bool
		hot     bool
	)

	cmd := &cobra.Command{
		Use:   "serve [registry]",
		Short: "Host a live constellation in the browser",
		Long: `Host a live constellation in the browser.

Clicking a glyph activates it on the server; activations and codex lines are
pushed to every open page over a websocket. With --watch, edits to the
registry file are picked up without restarting and the active set survives
the reload.`,
		Example: `  constellation serve grove.json --watch
  constellation serve --mongo --addr :9000`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRegistry,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := constellation.ParseSeasonalMode(mode)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			glyphs, name, err := c.loadGlyphs(ctx, args, mongo, noCache)
			if err != nil {
				return err
			}

			cfg := server.Config{
				Addr:            c.serveAddr(addr),
				Frame:           c.frame(0, 0, 0),
				Mode:            m,
				AllowedOrigins:  c.Config.Server.Origins,
				MutationTrigger: c.logMutation,
			}
			if origins != "" {
				cfg.AllowedOrigins = parseList(origins)
			}
			srv := server.New(glyphs, cfg, c.Logger)

			if hot {
				if mongo || (len(args) == 0 && c.Config.Registry.Path == "") {
					printWarning("--watch needs a registry file; ignoring")
				} else if err := c.watchRegistry(ctx, name, srv); err != nil {
					return err
				}
			}

			printInfo("Serving %d glyphs from %s", len(glyphs), name)
			printDetail("http://%s", cfg.Addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultAddr+")")
	cmd.Flags().StringVar(&mode, "mode", string(constellation.ModeAuto), "initial seasonal mode")
	cmd.Flags().StringVar(&origins, "origins", "", "allowed websocket origins (comma-separated)")
	cmd.Flags().BoolVar(&mongo, "mongo", false, "read the registry from the configured MongoDB collection")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&hot, "watch", false, "reload the registry file when it changes")

	return cmd
}

func (c *CLI) serveAddr(flag string) string {
	switch {
	case flag != "":
		return flag
	case c.Config.Server.Addr != "":
		return c.Config.Server.Addr
	}
	return defaultAddr
}

// watchRegistry reloads srv whenever path changes, until ctx is done.
func (c *CLI) watchRegistry(ctx context.Context, path string, srv *server.Server) error {
	w, err := watch.New(path, srv.Reload, watch.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("watch registry: %w", err)
	}
	go func() {
		defer w.Close()
		w.Run(ctx)
	}()
	printDetail("watching %s", path)
	return nil
}

// logMutation is the serve mutation trigger: it records the mutation path.
func (c *CLI) logMutation(g glyph.Glyph) error {
	if g.MutationPath == "" {
		c.Logger.Debug("glyph has no mutation path", "glyph", g.Name)
		return nil
	}
	c.Logger.Info("mutation started", "glyph", g.Name, "path", g.MutationPath)
	return nil
}
