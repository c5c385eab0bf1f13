// corkboardctl is a small CLI for the corkboard REST API: canvas
// inspection, layout import/export and guestbook moderation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corkboard/corkboard/client"
	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/model"
)

var (
	apiFlag    string
	tokenFlag  string
	canvasFlag string
	rootCmd    = &cobra.Command{
		Use:   "corkboardctl",
		Short: "CLI client for the corkboard REST API",
	}
)

func newClient() *client.Client {
	token := tokenFlag
	if token == "" {
		token = auth.LocalDevOwnerKey
	}
	return client.New(apiFlag, token)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Canvas service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Bearer token (defaults to the local dev key)")

	// canvas subcommands
	canvasCmd := &cobra.Command{Use: "canvas", Short: "Canvas operations"}
	canvasCmd.AddCommand(&cobra.Command{
		Use:   "create [title]",
		Short: "Create a canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := newClient().CreateCanvas(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cv)
		},
	})
	canvasCmd.AddCommand(&cobra.Command{
		Use:   "get [canvasId]",
		Short: "Show canvas metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := newClient().GetCanvas(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cv)
		},
	})
	rootCmd.AddCommand(canvasCmd)

	// layout subcommands
	layoutCmd := &cobra.Command{Use: "layout", Short: "Layout import/export"}
	layoutGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Print a canvas layout as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if canvasFlag == "" {
				return fmt.Errorf("--canvas required")
			}
			layout, rev, err := newClient().GetLayout(context.Background(), canvasFlag)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"layout": layout, "revision": rev})
		},
	}
	layoutSaveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Save a layout from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if canvasFlag == "" {
				return fmt.Errorf("--canvas required")
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			layout, err := model.DecodeLayout(raw)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			res, err := newClient().SaveLayout(context.Background(), canvasFlag, layout)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	layoutCmd.PersistentFlags().StringVarP(&canvasFlag, "canvas", "c", "", "Canvas ID (required)")
	layoutCmd.AddCommand(layoutGetCmd, layoutSaveCmd)
	rootCmd.AddCommand(layoutCmd)

	// guestbook subcommands
	guestbookCmd := &cobra.Command{Use: "guestbook", Short: "Guestbook moderation"}
	guestbookCmd.PersistentFlags().StringVarP(&canvasFlag, "canvas", "c", "", "Canvas ID (required)")
	guestbookCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List guestbook entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if canvasFlag == "" {
				return fmt.Errorf("--canvas required")
			}
			entries, err := newClient().ListGuestbookEntries(context.Background(), canvasFlag, 0)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	})
	guestbookCmd.AddCommand(&cobra.Command{
		Use:   "delete [entryId]",
		Short: "Delete a guestbook entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if canvasFlag == "" {
				return fmt.Errorf("--canvas required")
			}
			return newClient().DeleteGuestbookEntry(context.Background(), canvasFlag, args[0])
		},
	})
	rootCmd.AddCommand(guestbookCmd)

	// element types
	rootCmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "List registered element types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := newClient().ElementTypes(context.Background())
			if err != nil {
				return err
			}
			return printJSON(types)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
