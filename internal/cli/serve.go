package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanparty/internal/api"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags analysisFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Serve starts an HTTP server exposing the analysis:

  GET  /healthz
  POST /v1/analyze   (body: links, query: prefix, all, strategy, workers)
  POST /v1/render    (additionally: format, engine, detailed, highlight)

Analysis flags set the defaults for requests that omit a parameter.`,
		Example: `  lanparty serve --addr :9000
  curl --data-binary @input.txt 'localhost:8080/v1/analyze?strategy=exact'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.serve(cmd, addr, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// serve runs the HTTP server until the command context is cancelled, then
// shuts down gracefully.
func (c *CLI) serve(cmd *cobra.Command, addr string, flags *analysisFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	defaults := flags.options(cmd, c.Config.Analysis)
	if err := defaults.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner(ctx, flags.noCache)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(runner, logger, defaults).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "strategy", defaults.Strategy, "prefix", defaults.Filter())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
