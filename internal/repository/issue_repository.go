package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-fixit/issue-service/internal/domain"
)

const issueColumns = `id, title, description, category, status, image_url, created_by, remarks, created_at, updated_at`

// remarkRow is the JSONB element stored in issues.remarks.
type remarkRow struct {
	Text    string    `json:"text"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, title, description, category, status, image_url, created_by, remarks, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,'[]'::jsonb,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		issue.ID,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Status,
		issue.ImageURL,
		issue.CreatedBy,
		issue.CreatedAt,
		issue.UpdatedAt,
	)
	return err
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return scanIssue(r.pool.QueryRow(ctx, query, id))
}

func (r *issueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC, id DESC`,
		issueColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []domain.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

// ApplyUpdate relies on a single statement: the CTE takes the row lock, so
// concurrent writers queue and `||` appends to whatever remarks are current.
// prev.status is read under that lock and is the status this write replaced.
func (r *issueRepository) ApplyUpdate(ctx context.Context, id string, update domain.IssueUpdate) (*domain.AppliedUpdate, error) {
	appended := []remarkRow{}
	if update.Remark != nil {
		appended = append(appended, remarkRow{
			Text:    update.Remark.Text,
			AddedBy: update.Remark.AddedBy,
			AddedAt: update.Remark.AddedAt,
		})
	}
	payload, err := json.Marshal(appended)
	if err != nil {
		return nil, err
	}

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	const query = `
        WITH prev AS (
            SELECT id, status FROM issues WHERE id=$1 FOR UPDATE
        )
        UPDATE issues AS i
        SET status = COALESCE($2, i.status),
            remarks = i.remarks || $3::jsonb,
            updated_at = GREATEST(i.updated_at, $4)
        FROM prev
        WHERE i.id = prev.id
        RETURNING i.id, i.title, i.description, i.category, i.status, i.image_url,
                  i.created_by, i.remarks, i.created_at, i.updated_at, prev.status`

	var previous domain.IssueStatus
	issue, err := scanIssue(r.pool.QueryRow(ctx, query, id, status, string(payload), update.UpdatedAt), &previous)
	if err != nil {
		return nil, err
	}
	return &domain.AppliedUpdate{Issue: issue, PreviousStatus: previous}, nil
}

// scanIssue reads issueColumns followed by any extra destinations.
func scanIssue(row pgx.Row, extra ...any) (*domain.Issue, error) {
	var (
		issue   domain.Issue
		remarks []remarkRow
	)
	dest := append([]any{
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Status,
		&issue.ImageURL,
		&issue.CreatedBy,
		&remarks,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	issue.Remarks = make([]domain.Remark, 0, len(remarks))
	for _, remark := range remarks {
		issue.Remarks = append(issue.Remarks, domain.Remark{
			Text:    remark.Text,
			AddedBy: remark.AddedBy,
			AddedAt: remark.AddedAt.UTC(),
		})
	}
	issue.CreatedAt = issue.CreatedAt.UTC()
	issue.UpdatedAt = issue.UpdatedAt.UTC()
	return &issue, nil
}
