package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		sourceKind string
		cacheKind  string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "serve [items-file]",
		Short: "Serve timeline layouts over HTTP",
		Long: `Serve timeline layouts over HTTP.

Routes:
  GET /healthz
  GET /api/v1/window?granularity=&cursor=&offset=
  GET /api/v1/timeline?granularity=&cursor=&offset=&q=&today=&tie_break=&collation=
  GET /api/v1/timeline.svg?...&theme=&width=&lane_height=

Items come from the given file or the configured source (file or mongo).
Layouts and SVGs are cached in the configured cache; use --cache redis to
share them between instances or --cache memory to keep them in process.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			if sourceKind != "" {
				c.Config.Source.Kind = sourceKind
			}
			if cacheKind != "" {
				c.Config.Cache.Kind = cacheKind
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runServe(cmd.Context(), input, quiet)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&sourceKind, "source", "", "item source: file, mongo (default from config)")
	cmd.Flags().StringVar(&cacheKind, "cache", "", "cache: memory, redis, file, none (default from config)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "disable per-request logging")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, quiet bool) error {
	src, closeFn, err := c.newSource(ctx, input)
	if err != nil {
		return err
	}
	defer closeFn()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(server.Options{
		Addr:           c.Config.Server.Addr,
		Source:         src,
		Runner:         runner,
		Defaults:       c.Config.PipelineDefaults(),
		Logger:         loggerFromContext(ctx),
		DisableReqLogs: quiet,
	})

	printInfo("Serving timeline API")
	printKeyValue("address", StyleLink.Render("http://"+srv.Addr()))
	printKeyValue("source", src.Name())
	printKeyValue("cache", c.Config.Cache.Kind)
	printNewline()
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
