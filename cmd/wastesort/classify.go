package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hurttlocker/wastesort/internal/classify"
	"github.com/hurttlocker/wastesort/internal/rules"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify <item>...",
		Short: "Classify items by name",
		Example: `  wastesort classify 废电池
  wastesort classify 香蕉皮 旧报纸 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.resolver.BatchClassify(cmd.Context(), args)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return writeClassifications(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func writeClassifications(out io.Writer, items []classify.BatchItem) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tCATEGORY\tSOURCE\tREASON")
	for _, it := range items {
		source := string(it.Result.Source)
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ItemName, it.Result.Category, source, it.Result.Reason)
	}
	return w.Flush()
}

func newSimilarCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <item>",
		Short: "Suggest stored items similar to a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, name := range a.resolver.SimilarItems(args[0], limit) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of suggestions")
	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show rule counts per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			rows := rules.Breakdown(a.store.Statistics())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"statistics": rows, "total_rules": a.store.Len()})
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tCOUNT\tPERCENT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", r.Category, r.Count, r.Percentage)
			}
			fmt.Fprintf(w, "total\t%d\t\n", a.store.Len())
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
