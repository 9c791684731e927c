package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/pkg/client"
)

const timeLayout = "2006-01-02 15:04"

func (a *cli) printIssues(issues []client.Issue) error {
	if len(issues) == 0 {
		fmt.Fprintln(a.out, "No issues found")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTATUS\tREPORTED BY\tCREATED")
	for _, issue := range issues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			issue.ID,
			truncate(issue.Title, 40),
			issue.Category,
			a.status(issue.Status),
			issue.CreatedBy.Name,
			issue.CreatedAt.Local().Format(timeLayout),
		)
	}
	return w.Flush()
}

func (a *cli) printIssue(issue *client.Issue) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", issue.ID)
	fmt.Fprintf(w, "Title:\t%s\n", issue.Title)
	fmt.Fprintf(w, "Category:\t%s\n", issue.Category)
	fmt.Fprintf(w, "Status:\t%s\n", a.status(issue.Status))
	fmt.Fprintf(w, "Reported by:\t%s <%s>\n", issue.CreatedBy.Name, issue.CreatedBy.Email)
	fmt.Fprintf(w, "Created:\t%s\n", issue.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Updated:\t%s\n", issue.UpdatedAt.Local().Format(timeLayout))
	if issue.ImageURL != nil {
		fmt.Fprintf(w, "Image:\t%s\n", *issue.ImageURL)
	}
	fmt.Fprintf(w, "Description:\t%s\n", issue.Description)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(issue.Remarks) == 0 {
		return nil
	}
	fmt.Fprintf(a.out, "\nRemarks (%d):\n", len(issue.Remarks))
	for _, r := range issue.Remarks {
		fmt.Fprintf(a.out, "  [%s] %s: %s\n", r.AddedAt.Local().Format(timeLayout), r.AddedBy.Name, r.Text)
	}
	return nil
}

// status renders a status, optionally in its badge colour.
func (a *cli) status(s string) string {
	if !a.color {
		return s
	}
	r, g, b, ok := hexRGB(domain.IssueStatus(s).Color())
	if !ok {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
}

func hexRGB(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
