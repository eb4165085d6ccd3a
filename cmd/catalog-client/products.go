package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func newProductsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			items, err := a.catalog.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
}

func newProductCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := a.catalog.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("product %d not found", id)
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rate limit and cache settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			return printJSON(cmd.OutOrStdout(), a.catalog.Stats(cmd.Context()))
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
