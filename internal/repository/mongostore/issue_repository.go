package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/repository"
)

type issueRepository struct {
	coll *mongo.Collection
}

// NewIssueRepository returns a repository over the issues collection.
func NewIssueRepository(db *mongo.Database) repository.IssueRepository {
	return &issueRepository{coll: db.Collection(IssuesCollection)}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	_, err := r.coll.InsertOne(ctx, newIssueDocument(issue))
	return err
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	var doc issueDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	issue := doc.toDomain()
	return &issue, nil
}

func (r *issueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	query := bson.M{}
	if filter.OwnerID != nil {
		query["createdBy"] = *filter.OwnerID
	}
	if filter.Category != nil {
		query["category"] = string(*filter.Category)
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	issues := make([]domain.Issue, 0, len(docs))
	for _, doc := range docs {
		issues = append(issues, doc.toDomain())
	}
	return issues, nil
}

// ApplyUpdate issues a single findOneAndUpdate so concurrent $push operations
// on the same document all land. The pre-image is returned by the server and
// the change is replayed on it, giving exactly the state this write produced.
func (r *issueRepository) ApplyUpdate(ctx context.Context, id string, update domain.IssueUpdate) (*domain.AppliedUpdate, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc issueDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, updateDocument(update), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	issue := doc.toDomain()
	previous := issue.Status
	issue.Apply(update)
	return &domain.AppliedUpdate{Issue: &issue, PreviousStatus: previous}, nil
}

func updateDocument(update domain.IssueUpdate) bson.M {
	change := bson.M{
		"$max": bson.M{"updatedAt": update.UpdatedAt},
	}
	if update.Status != nil {
		change["$set"] = bson.M{"status": string(*update.Status)}
	}
	if update.Remark != nil {
		change["$push"] = bson.M{"remarks": newRemarkDocument(*update.Remark)}
	}
	return change
}
