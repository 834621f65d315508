package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `Manage the rule table used for name classification.

Every change is written through to the configured backend (the CSV data
file, or SQLite when --backend=sqlite) immediately.`,
		Example: `  wastesort rules list --category hazardous
  wastesort rules add 旧手机 有害垃圾 "含电池和重金属"
  wastesort rules delete 旧手机
  wastesort rules import extra_rules.csv
  wastesort rules export > backup.csv`,
	}
	cmd.AddCommand(
		newRulesListCmd(opts),
		newRulesUpsertCmd(opts, "add", "Add a rule (replaces an existing rule for the same item)"),
		newRulesUpsertCmd(opts, "update", "Update a rule (same as add)"),
		newRulesDeleteCmd(opts),
		newRulesImportCmd(opts),
		newRulesExportCmd(opts),
	)
	return cmd
}

func newRulesListCmd(opts *globalOptions) *cobra.Command {
	var category string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter waste.Category
			if category != "" {
				c, ok := waste.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				filter = c
			}

			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			var list []rules.Rule
			for _, r := range a.store.All() {
				if filter == "" || r.Category == filter {
					list = append(list, r)
				}
			}
			if asJSON {
				if list == nil {
					list = []rules.Rule{}
				}
				return writeJSON(cmd.OutOrStdout(), list)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tCATEGORY\tREASON")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ItemName, r.Category, r.Reason)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list rules of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules as JSON")
	return cmd
}

func newRulesUpsertCmd(opts *globalOptions, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <item> <category> <reason>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := rules.NormalizeRule(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Add(cmd.Context(), rule.ItemName, rule.Category, rule.Reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", rule.ItemName, rule.Category)
			return nil
		},
	}
}

func newRulesDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newRulesImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Upsert every rule from a CSV file",
		Long: `Upsert every rule from a CSV file with the columns 物品名称,垃圾类型,分类依据
(or item_name,category,reason). Nothing is imported if any row has an
unknown category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			incoming, err := rules.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.Import(cmd.Context(), incoming)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules (%d total)\n", n, a.store.Len())
			return nil
		},
	}
}

func newRulesExportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all rules as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return rules.WriteCSV(cmd.OutOrStdout(), a.store.All())
		},
	}
}
