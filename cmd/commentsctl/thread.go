package main

import (
	"github.com/spf13/cobra"

	"github.com/pribylovaa/gamerfeeds/internal/client"
	"github.com/pribylovaa/gamerfeeds/internal/models"
)

var threadCmd = &cobra.Command{
	Use:   "thread <type:id>",
	Short: "Show the comment tree of a game, news item or discussion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadView(cmd, args[0])
		if err != nil {
			return err
		}
		return printForest(cmd.OutOrStdout(), view.Forest())
	},
}

var postCmd = &cobra.Command{
	Use:   "post <type:id> <text>",
	Short: "Post a root comment or, with --parent, a reply",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var parentID *int64
		if p, _ := cmd.Flags().GetInt64("parent"); p > 0 {
			parentID = models.Int64(p)
		}

		view, err := loadView(cmd, args[0])
		if err != nil {
			return err
		}

		if _, err := view.Post(cmd.Context(), parentID, args[1]); err != nil {
			return err
		}
		return printForest(cmd.OutOrStdout(), view.Forest())
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <type:id> <comment-id> <text>",
	Short: "Edit the text of your comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}

		view, err := loadView(cmd, args[0])
		if err != nil {
			return err
		}

		if _, err := view.Edit(cmd.Context(), id, args[2]); err != nil {
			return err
		}
		return printForest(cmd.OutOrStdout(), view.Forest())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <type:id> <comment-id>",
	Short: "Delete a comment together with its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}

		view, err := loadView(cmd, args[0])
		if err != nil {
			return err
		}

		if err := view.Delete(cmd.Context(), id); err != nil {
			return err
		}
		return printForest(cmd.OutOrStdout(), view.Forest())
	},
}

func init() {
	postCmd.Flags().Int64("parent", 0, "id of the comment to reply to")
}

func loadView(cmd *cobra.Command, rawTarget string) (*client.ThreadView, error) {
	target, err := parseTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	view := client.NewThreadView(api, target)
	if err := view.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return view, nil
}
