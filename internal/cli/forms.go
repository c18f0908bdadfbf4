package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/internal/rules"
)

// NewFormsCommand creates the forms command group.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Inspect the form catalogue and overrides",
	}
	cmd.AddCommand(newFormsListCommand(rootOpts))
	cmd.AddCommand(newFormsShowCommand(rootOpts))
	cmd.AddCommand(newFormsEvalCommand(rootOpts))
	return cmd
}

func openResolver(rootOpts *RootOptions, cmd *cobra.Command) (*forms.Resolver, func() error, error) {
	reg, err := forms.Builtin()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalogue: %w", err)
	}
	store, _, err := rootOpts.openStore(cmd.Context(), cmd)
	if err != nil {
		return nil, nil, err
	}
	return forms.NewResolver(reg, store, rootOpts.logger(cmd)), store.Close, nil
}

func newFormsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List forms and where their schema comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSOURCE\tTITLE")
			for _, id := range resolver.Registry().IDs() {
				res, err := resolver.Effective(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id, res.Source, res.Definition.Title)
			}
			return tw.Flush()
		},
	}
}

func newFormsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <form-id>",
		Short: "Print the effective schema of a form as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closeFn, err := openResolver(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := resolver.Effective(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			var pretty any
			if err := json.Unmarshal(res.Raw, &pretty); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}
}

func newFormsEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "eval <form-id>",
		Short: "Evaluate the rule engine for a set of answers",
		Long: `Evaluate the rule engine for a form and print the resulting view.

Answers are given as repeated --set field=value flags; "true" and "false"
become checkbox values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := parseAnswers(sets)
			if err != nil {
				return err
			}

			resolver, closeFn, err := openResolver(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := resolver.Effective(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			view := rules.ComputeView(res.Definition, answers, rules.DefaultTable())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "answer as field=value (repeatable)")
	return cmd
}

func parseAnswers(sets []string) (map[string]any, error) {
	answers := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want field=value", s)
		}
		switch v {
		case "true":
			answers[k] = true
		case "false":
			answers[k] = false
		default:
			answers[k] = v
		}
	}
	return answers, nil
}
