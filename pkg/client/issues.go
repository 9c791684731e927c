package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
)

// NewIssue is a report to submit. Image is optional.
type NewIssue struct {
	Title       string
	Description string
	Category    string
	Image       *ImageFile
}

// ImageFile is a photo attached to a new issue.
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// CreateIssue submits a report as multipart form data.
func (c *Client) CreateIssue(ctx context.Context, in NewIssue) (*Issue, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range [][2]string{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
	} {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("write %s: %w", field[0], err)
		}
	}
	if in.Image != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(in.Image.Name))))
		header.Set("Content-Type", in.Image.ContentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, in.Image.Data); err != nil {
			return nil, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var out issueEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/issues", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

// MyIssues lists the caller's own issues.
func (c *Client) MyIssues(ctx context.Context) (*IssueList, error) {
	var out IssueList
	if err := c.doJSON(ctx, http.MethodGet, "/api/issues/my-issues", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIssues lists the caller's own issues matching filter.
func (c *Client) ListIssues(ctx context.Context, filter Filter) (*IssueList, error) {
	var out IssueList
	if err := c.doJSON(ctx, http.MethodGet, "/api/issues"+filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIssue fetches one of the caller's issues.
func (c *Client) GetIssue(ctx context.Context, id string) (*Issue, error) {
	var out issueEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

// AdminListIssues lists every issue matching filter. Admin only.
func (c *Client) AdminListIssues(ctx context.Context, filter Filter) (*IssueList, error) {
	var out IssueList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/issues"+filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIssue changes status and/or appends a remark. Admin only.
func (c *Client) UpdateIssue(ctx context.Context, id string, update IssueUpdate) (*Issue, error) {
	var out issueEnvelope
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/issues/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

// ResolveIssue marks an issue Resolved. Admin only.
func (c *Client) ResolveIssue(ctx context.Context, id string) (*Issue, error) {
	var out issueEnvelope
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/issues/"+url.PathEscape(id)+"/resolve", nil, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

func (f Filter) query() string {
	values := url.Values{}
	if f.Category != "" {
		values.Set("category", f.Category)
	}
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
