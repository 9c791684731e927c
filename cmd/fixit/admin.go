package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campus-fixit/issue-service/pkg/client"
)

func (a *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Triage every reported issue (admin only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			session, err := a.requireSession()
			if err != nil {
				return err
			}
			if session.User.Role != "admin" {
				return errors.New("admin commands need an admin account")
			}
			return nil
		},
	}
	cmd.AddCommand(a.adminListCmd(), a.adminUpdateCmd(), a.adminResolveCmd())
	return cmd
}

func (a *cli) adminListCmd() *cobra.Command {
	var filter client.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all issues, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			board := client.NewIssueBoard(a.client, client.ScopeAll)
			if err := board.Load(cmd.Context(), filter); err != nil {
				return err
			}
			return a.printIssues(board.Issues())
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func (a *cli) adminUpdateCmd() *cobra.Command {
	var status, remark string
	cmd := &cobra.Command{
		Use:   "update ISSUE_ID",
		Short: "Change status and/or add a remark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update client.IssueUpdate
			if cmd.Flags().Changed("status") {
				update.Status = &status
			}
			if cmd.Flags().Changed("remark") {
				update.Remark = &remark
			}
			issue, err := a.client.UpdateIssue(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Issue updated successfully")
			return a.printIssue(issue)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", `new status ("Open", "In Progress", "Resolved")`)
	cmd.Flags().StringVar(&remark, "remark", "", "note to append")
	return cmd
}

func (a *cli) adminResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ISSUE_ID",
		Short: "Mark an issue as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issue, err := a.client.ResolveIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Issue marked as resolved")
			return a.printIssue(issue)
		},
	}
}
