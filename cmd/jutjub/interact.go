package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	interactionUC "github.com/khoahotran/jutjub/internal/application/usecase/interaction"
)

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := interactionUC.NewToggleLikeUseCase(a.client, a.sessions, a.publisher, a.logger)
			if err := uc.Execute(cmd.Context(), interactionUC.ToggleLikeInput{VideoID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Liked video %s\n", args[0])
			return nil
		},
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write comments",
	}

	list := &cobra.Command{
		Use:   "list <id>",
		Short: "List the comments of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := interactionUC.NewListCommentsUseCase(a.client).Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(comments, func(w io.Writer) { printComments(w, comments) })
		},
	}

	add := &cobra.Command{
		Use:   "add <id> <text...>",
		Short: "Comment on a video",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := interactionUC.NewAddCommentUseCase(a.client, a.sessions, a.publisher, a.logger)
			c, err := uc.Execute(cmd.Context(), interactionUC.AddCommentInput{
				VideoID: args[0],
				Text:    strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			return a.print(c, func(w io.Writer) { fmt.Fprintf(w, "Comment %s posted\n", c.ID) })
		},
	}

	cmd.AddCommand(list, add)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := interactionUC.NewDeleteVideoUseCase(a.client, a.cache, a.sessions, a.publisher, a.logger)
			if err := uc.Execute(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted video %s\n", args[0])
			return nil
		},
	}
}
