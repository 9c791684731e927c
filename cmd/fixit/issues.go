package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/campus-fixit/issue-service/pkg/client"
)

func (a *cli) issuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Report and view your own issues",
	}
	cmd.AddCommand(a.issuesMineCmd(), a.issuesListCmd(), a.issuesShowCmd(), a.issuesCreateCmd())
	return cmd
}

func (a *cli) issuesMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your issues, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			board := client.NewIssueBoard(a.client, client.ScopeMine)
			if err := board.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.printIssues(board.Issues())
		},
	}
}

func (a *cli) issuesListCmd() *cobra.Command {
	var filter client.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your issues filtered by category and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			board := client.NewIssueBoard(a.client, client.ScopeMine)
			if err := board.Load(cmd.Context(), filter); err != nil {
				return err
			}
			return a.printIssues(board.Issues())
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func (a *cli) issuesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ISSUE_ID",
		Short: "Show one of your issues with its remarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			issue, err := a.client.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printIssue(issue)
		},
	}
}

func (a *cli) issuesCreateCmd() *cobra.Command {
	var (
		in        client.NewIssue
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return err
				}
				defer f.Close()
				in.Image = &client.ImageFile{
					Name:        filepath.Base(imagePath),
					ContentType: imageContentType(imagePath),
					Data:        f,
				}
			}
			issue, err := a.client.CreateIssue(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Issue reported successfully")
			return a.printIssue(issue)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "short title")
	cmd.Flags().StringVar(&in.Description, "description", "", "what is wrong and where")
	cmd.Flags().StringVar(&in.Category, "category", "", "Electrical, Water, Internet or Infrastructure")
	cmd.Flags().StringVar(&imagePath, "image", "", "optional photo (jpeg, png or gif)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func addFilterFlags(cmd *cobra.Command, filter *client.Filter) {
	cmd.Flags().StringVar(&filter.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&filter.Status, "status", "", `only this status ("Open", "In Progress", "Resolved")`)
}

func imageContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
