package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/campus-fixit/issue-service/internal/domain"
)

// StatusUpdate carries what the status email shows.
type StatusUpdate struct {
	StudentName string
	Title       string
	Category    domain.IssueCategory
	OldStatus   domain.IssueStatus
	NewStatus   domain.IssueStatus
	Remark      string
	AdminName   string
}

type statusUpdateView struct {
	StatusUpdate
	StatusColor    string
	PreviousStatus string
}

var statusUpdateTmpl = template.Must(template.New("status_update").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;background-color:#f4f4f5;margin:0;padding:0;">
  <div style="max-width:600px;margin:20px auto;background-color:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background:#667eea;color:#ffffff;padding:30px;text-align:center;"><h1 style="margin:0;font-size:24px;">Campus FixIt</h1></div>
    <div style="padding:30px;">
      <p>Hi {{.StudentName}},</p>
      <p>Your reported issue has been updated by our admin team.</p>
      <div style="background-color:#f9fafb;border-left:4px solid {{.StatusColor}};padding:20px;margin:20px 0;border-radius:4px;">
        <div style="font-size:18px;font-weight:600;color:#1f2937;margin-bottom:10px;">{{.Title}}</div>
        <div><span style="color:#6b7280;">Category:</span> <strong>{{.Category}}</strong></div>
        <div><span style="color:#6b7280;">Status:</span> <span style="display:inline-block;padding:4px 12px;border-radius:12px;font-size:12px;color:#ffffff;background-color:{{.StatusColor}};">{{.NewStatus}}</span></div>
        {{- if .PreviousStatus}}
        <div><span style="color:#6b7280;">Previous Status:</span> <strong>{{.PreviousStatus}}</strong></div>
        {{- end}}
        {{- if .AdminName}}
        <div><span style="color:#6b7280;">Updated By:</span> <strong>{{.AdminName}}</strong></div>
        {{- end}}
        {{- if .Remark}}
        <div style="margin-top:20px;padding:15px;background-color:#eff6ff;border-left:3px solid #3b82f6;">
          <div style="font-weight:600;color:#1e40af;">Admin Remark:</div>
          <div>{{.Remark}}</div>
        </div>
        {{- end}}
      </div>
      <p>Thank you for using Campus FixIt. We're working hard to resolve your issue!</p>
    </div>
    <div style="background-color:#f9fafb;padding:20px 30px;text-align:center;font-size:12px;color:#6b7280;">
      <p><strong>Campus FixIt</strong></p>
      <p>This is an automated notification. Please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>
`))

// StatusUpdateSubject is the subject line for a status email.
func StatusUpdateSubject(title string, status domain.IssueStatus) string {
	return fmt.Sprintf("Issue update: %s is now %s", title, status)
}

// RenderStatusUpdate builds the HTML and plain text bodies. All user supplied
// values are escaped in the HTML body.
func RenderStatusUpdate(u StatusUpdate) (string, string, error) {
	view := statusUpdateView{
		StatusUpdate: u,
		StatusColor:  u.NewStatus.Color(),
	}
	if u.OldStatus != "" && u.OldStatus != u.NewStatus {
		view.PreviousStatus = string(u.OldStatus)
	}
	view.Remark = strings.TrimSpace(u.Remark)

	var buf bytes.Buffer
	if err := statusUpdateTmpl.Execute(&buf, view); err != nil {
		return "", "", err
	}
	return buf.String(), renderText(view), nil
}

func renderText(v statusUpdateView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour reported issue has been updated by our admin team.\n\n", v.StudentName)
	fmt.Fprintf(&b, "%s\nCategory: %s\nStatus: %s\n", v.Title, v.Category, v.NewStatus)
	if v.PreviousStatus != "" {
		fmt.Fprintf(&b, "Previous Status: %s\n", v.PreviousStatus)
	}
	if v.AdminName != "" {
		fmt.Fprintf(&b, "Updated By: %s\n", v.AdminName)
	}
	if v.Remark != "" {
		fmt.Fprintf(&b, "\nAdmin Remark:\n%s\n", v.Remark)
	}
	b.WriteString("\nThank you for using Campus FixIt.\n")
	return b.String()
}

// NewStatusUpdateMessage renders a ready to send status email.
func NewStatusUpdateMessage(to string, u StatusUpdate) (Message, error) {
	html, text, err := RenderStatusUpdate(u)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: StatusUpdateSubject(u.Title, u.NewStatus),
		HTML:    html,
		Text:    text,
	}, nil
}
