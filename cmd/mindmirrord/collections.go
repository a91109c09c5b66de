package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Peleke/MindMirror-sub002/internal/collections"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Inspect and manage vector collections",
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections with point counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
		defer cancel()

		names, err := a.store.ListCollections(ctx)
		if err != nil {
			return err
		}

		type row struct {
			Name       string `json:"name"`
			Kind       string `json:"kind"`
			Tradition  string `json:"tradition,omitempty"`
			UserID     string `json:"user_id,omitempty"`
			PointCount int    `json:"point_count"`
		}
		rows := make([]row, 0, len(names))
		for _, name := range names {
			r := row{Name: name}
			if kind, tradition, userID, err := collections.Parse(name); err == nil {
				r.Kind = string(kind)
				r.Tradition = tradition
				r.UserID = userID
			}
			if info, err := a.store.GetCollectionInfo(ctx, name); err == nil {
				r.PointCount = info.PointCount
			}
			rows = append(rows, r)
		}
		return printJSON(rows)
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and all its points",
	Long: `Delete a collection and all its points. This cannot be undone.

Example:
  mindmirrord collections delete stoicism_user-42_personal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
		defer cancel()

		if err := a.store.DeleteCollection(ctx, args[0]); err != nil {
			return err
		}
		a.manager.Forget(args[0])
		return printJSON(map[string]string{"deleted": args[0]})
	},
}
