package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file: %s\n\n", opts.cfg.ConfigPath)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, e := range opts.cfg.Entries() {
				source := string(e.Source)
				if e.From != "" {
					source += " (" + e.From + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Value, source)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if err := opts.cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\ninvalid: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "\nconfiguration is valid")
			return nil
		},
	}
}
