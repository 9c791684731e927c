package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/issue-service/internal/api/dto"
	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/service"
)

// AdminIssuesHandler exposes issue triage to admins.
type AdminIssuesHandler struct {
	service *service.IssueService
}

// NewAdminIssuesHandler constructs handler.
func NewAdminIssuesHandler(issueService *service.IssueService) *AdminIssuesHandler {
	return &AdminIssuesHandler{service: issueService}
}

// ListIssues GET /api/admin/issues?category=&status=.
func (h *AdminIssuesHandler) ListIssues(c *fiber.Ctx) error {
	filter, echo := parseIssueFilter(c)
	issues, err := h.service.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	people, err := h.service.Participants(c.UserContext(), issues...)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueListResponse(issues, people, echo))
}

// UpdateIssue PUT /api/admin/issues/:id.
func (h *AdminIssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := BindJSON(c, &req); err != nil {
		return err
	}

	input := service.UpdateIssueInput{Remark: req.Remark}
	if req.Status != nil {
		status := domain.IssueStatus(*req.Status)
		input.Status = &status
	}
	issue, err := h.service.UpdateIssue(c.UserContext(), identity.UserID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return h.render(c, "Issue updated successfully", issue)
}

// ResolveIssue PUT /api/admin/issues/:id/resolve.
func (h *AdminIssuesHandler) ResolveIssue(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	issue, err := h.service.ResolveIssue(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return h.render(c, "Issue marked as resolved", issue)
}

func (h *AdminIssuesHandler) render(c *fiber.Ctx, message string, issue *domain.Issue) error {
	people, err := h.service.Participants(c.UserContext(), *issue)
	if err != nil {
		return err
	}
	return c.JSON(dto.IssueEnvelope{Message: message, Issue: dto.NewIssueResponse(issue, people)})
}
