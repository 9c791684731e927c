package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/repository"
)

var storedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func storedIssue(status string, remarks bson.A) bson.D {
	return bson.D{
		{Key: "_id", Value: "6f1c1f8e-3d0e-4b59-9a1d-000000000001"},
		{Key: "title", Value: "Leaky pipe"},
		{Key: "description", Value: "Block C"},
		{Key: "category", Value: "Water"},
		{Key: "status", Value: status},
		{Key: "imageUrl", Value: nil},
		{Key: "createdBy", Value: "alice"},
		{Key: "remarks", Value: remarks},
		{Key: "createdAt", Value: storedAt},
		{Key: "updatedAt", Value: storedAt},
	}
}

func TestIssueRepositoryApplyUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := storedAt.Add(time.Hour)

	mt.Run("status and remark in one findAndModify", func(mt *mtest.T) {
		earlier := bson.A{bson.D{
			{Key: "text", Value: "seen"},
			{Key: "addedBy", Value: "admin-0"},
			{Key: "addedAt", Value: storedAt},
		}}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedIssue("Open", earlier)}))

		progress := domain.IssueStatusInProgress
		applied, err := NewIssueRepository(mt.DB).ApplyUpdate(ctx, "6f1c1f8e-3d0e-4b59-9a1d-000000000001", domain.IssueUpdate{
			Status:    &progress,
			Remark:    &domain.Remark{Text: "plumber booked", AddedBy: "admin-1", AddedAt: now},
			UpdatedAt: now,
		})
		require.NoError(mt, err)
		assert.Equal(mt, domain.IssueStatusOpen, applied.PreviousStatus)
		assert.Equal(mt, domain.IssueStatusInProgress, applied.Issue.Status)
		require.Len(mt, applied.Issue.Remarks, 2)
		assert.Equal(mt, "plumber booked", applied.Issue.Remarks[1].Text)
		assert.True(mt, now.Equal(applied.Issue.UpdatedAt))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, IssuesCollection, cmd.Lookup("findAndModify").StringValue())
		assert.Equal(mt, "6f1c1f8e-3d0e-4b59-9a1d-000000000001", cmd.Lookup("query", "_id").StringValue())
		assert.Equal(mt, "In Progress", cmd.Lookup("update", "$set", "status").StringValue())
		assert.Equal(mt, "plumber booked", cmd.Lookup("update", "$push", "remarks", "text").StringValue())
		assert.Equal(mt, "admin-1", cmd.Lookup("update", "$push", "remarks", "addedBy").StringValue())
		assert.True(mt, now.Equal(cmd.Lookup("update", "$max", "updatedAt").Time()))
	})

	mt.Run("empty update only advances updatedAt", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedIssue("Resolved", bson.A{})}))

		applied, err := NewIssueRepository(mt.DB).ApplyUpdate(ctx, "6f1c1f8e-3d0e-4b59-9a1d-000000000001", domain.IssueUpdate{UpdatedAt: now})
		require.NoError(mt, err)
		assert.Equal(mt, domain.IssueStatusResolved, applied.PreviousStatus)
		assert.Equal(mt, domain.IssueStatusResolved, applied.Issue.Status)
		assert.Empty(mt, applied.Issue.Remarks)

		update := mt.GetStartedEvent().Command.Lookup("update").Document()
		_, err = update.LookupErr("$set")
		assert.Error(mt, err)
		_, err = update.LookupErr("$push")
		assert.Error(mt, err)
		_, err = update.LookupErr("$max", "updatedAt")
		assert.NoError(mt, err)
	})

	mt.Run("stale clock never moves updatedAt back", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedIssue("Open", bson.A{})}))

		applied, err := NewIssueRepository(mt.DB).ApplyUpdate(ctx, "6f1c1f8e-3d0e-4b59-9a1d-000000000001", domain.IssueUpdate{
			UpdatedAt: storedAt.Add(-time.Hour),
		})
		require.NoError(mt, err)
		assert.True(mt, storedAt.Equal(applied.Issue.UpdatedAt))
	})

	mt.Run("unknown id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewIssueRepository(mt.DB).ApplyUpdate(ctx, "missing", domain.IssueUpdate{UpdatedAt: now})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestIssueRepositoryGetByIDNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty cursor", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "fixit.issues", mtest.FirstBatch))

		_, err := NewIssueRepository(mt.DB).GetByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: fixit.users index: email_1",
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), &domain.User{
			ID: "u2", Name: "Eve", Email: "alice@x.edu", Role: domain.RoleStudent, CreatedAt: storedAt,
		})
		assert.ErrorIs(mt, err, repository.ErrDuplicateEmail)
	})
}
