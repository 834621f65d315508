package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hurttlocker/wastesort/internal/api"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on server.addr (default localhost:5000).

Image classification is enabled when image.backend is onnx or http;
otherwise /api/classify-image answers 503. Swagger UI is served at
/swagger/index.html.`,
		Example: `  wastesort serve --addr :8080
  wastesort serve --image-backend http`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts.cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			threshold := a.threshold()
			srv := api.NewServer(api.Config{
				Store:            a.store,
				Resolver:         a.resolver,
				Images:           a.images,
				MaxUploadBytes:   a.maxUploadBytes(),
				DefaultThreshold: &threshold,
				Version:          version,
			})
			return srv.ListenAndServe(ctx, a.cfg.ServerAddr.Value)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.image, "image-backend", "", "image backend: none, onnx or http (overrides image.backend)")
	return cmd
}
