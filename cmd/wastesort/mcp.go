package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hurttlocker/wastesort/internal/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve classification tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing
classification, rule management and statistics tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			threshold := a.threshold()
			srv := mcp.NewServer(mcp.ServerConfig{
				Store:            a.store,
				Resolver:         a.resolver,
				Images:           a.images,
				Version:          version,
				DefaultThreshold: &threshold,
			})
			return server.ServeStdio(srv)
		},
	}
	cmd.Flags().StringVar(&opts.image, "image-backend", "", "image backend: none, onnx or http (overrides image.backend)")
	return cmd
}
