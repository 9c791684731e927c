package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/campus-fixit/issue-service/internal/api/dto"
	"github.com/campus-fixit/issue-service/internal/auth"
	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/service"
	"github.com/campus-fixit/issue-service/internal/storage"
	apperrors "github.com/campus-fixit/issue-service/pkg/util/errorutil"
)

// IssuesHandler manages student issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /api/issues (multipart).
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	form := dto.CreateIssueForm{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Category:    strings.TrimSpace(c.FormValue("category")),
	}
	if err := ValidateStruct(&form); err != nil {
		return err
	}

	input := service.CreateIssueInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    domain.IssueCategory(form.Category),
	}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, fasthttp.ErrMissingFile):
	case err != nil:
		return apperrors.NewValidationError("invalid multipart body", map[string]any{"reason": err.Error()})
	default:
		file, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable image part", nil)
		}
		defer file.Close()
		input.Image = &storage.Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Size:        header.Size,
			Body:        file,
		}
	}

	issue, err := h.service.CreateIssue(c.UserContext(), identity.UserID, input)
	if err != nil {
		return err
	}
	people, err := h.service.Participants(c.UserContext(), *issue)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.IssueEnvelope{
		Message: "Issue reported successfully",
		Issue:   dto.NewIssueResponse(issue, people),
	})
}

// MyIssues GET /api/issues/my-issues.
func (h *IssuesHandler) MyIssues(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	issues, err := h.service.ListOwn(c.UserContext(), identity.UserID, domain.IssueFilter{})
	if err != nil {
		return err
	}
	return h.renderList(c, issues, nil)
}

// ListIssues GET /api/issues?category=&status=, scoped to the caller.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	filter, echo := parseIssueFilter(c)
	issues, err := h.service.ListOwn(c.UserContext(), identity.UserID, filter)
	if err != nil {
		return err
	}
	return h.renderList(c, issues, echo)
}

// GetIssue GET /api/issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	issue, err := h.service.GetOwn(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	people, err := h.service.Participants(c.UserContext(), *issue)
	if err != nil {
		return err
	}
	return c.JSON(dto.IssueEnvelope{Issue: dto.NewIssueResponse(issue, people)})
}

func (h *IssuesHandler) renderList(c *fiber.Ctx, issues []domain.Issue, echo *dto.IssueFilters) error {
	people, err := h.service.Participants(c.UserContext(), issues...)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueListResponse(issues, people, echo))
}

func requireIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok || identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}

// parseIssueFilter reads exact-match filters; empty values mean "any".
func parseIssueFilter(c *fiber.Ctx) (domain.IssueFilter, *dto.IssueFilters) {
	var (
		filter domain.IssueFilter
		echo   dto.IssueFilters
	)
	if v := c.Query("category"); v != "" {
		category := domain.IssueCategory(v)
		filter.Category = &category
		echo.Category = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.IssueStatus(v)
		filter.Status = &status
		echo.Status = &v
	}
	return filter, &echo
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
