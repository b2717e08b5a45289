package main

import (
	"fmt"

	analyzerhttp "github.com/fwojciec/htmlanalyzer/http"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	dir, err := deps.InputDir(c.Dir)
	if err != nil {
		return err
	}

	server, err := analyzerhttp.NewServer(dir,
		analyzerhttp.WithAddr(deps.Config.Addr),
		analyzerhttp.WithLogger(deps.Logger),
	)
	if err != nil {
		return err
	}
	if err := server.Open(); err != nil {
		return err
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "Serving %s at %s\n", dir, server.URL())
	for _, name := range server.HTMLFiles() {
		fmt.Fprintf(deps.Stdout, "  %s%s\n", server.URL(), name)
	}
	fmt.Fprintln(deps.Stdout, "Press Ctrl+C to stop")

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, "Server stopped")
	return nil
}
