package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

const collectionComments = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Kind      string             `bson:"kind"`
	TaskID    string             `bson:"task_id,omitempty"`
	ProjectID string             `bson:"project_id,omitempty"`
	AuthorID  string             `bson:"author_id"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID.Hex(),
		Kind:      domain.CommentKind(d.Kind),
		TaskID:    d.TaskID,
		ProjectID: d.ProjectID,
		AuthorID:  d.AuthorID,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := commentDoc{
		Kind:      string(c.Kind),
		TaskID:    c.TaskID,
		ProjectID: c.ProjectID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	created := *c
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	return r.list(ctx, bson.M{"kind": string(domain.CommentOnTask), "task_id": taskID})
}

func (r *CommentRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Comment, error) {
	return r.list(ctx, bson.M{"kind": string(domain.CommentOnProject), "project_id": projectID})
}

func (r *CommentRepository) list(ctx context.Context, filter bson.M) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := []*domain.Comment{}
	for cur.Next(ctx) {
		var d commentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		comments = append(comments, d.toDomain())
	}
	return comments, cur.Err()
}

func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"task_id": taskID})
	return err
}

func (r *CommentRepository) DeleteByProject(ctx context.Context, projectID string, taskIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"project_id": projectID}
	if len(taskIDs) > 0 {
		filter = bson.M{"$or": bson.A{
			bson.M{"project_id": projectID},
			bson.M{"task_id": bson.M{"$in": taskIDs}},
		}}
	}

	_, err := r.col.DeleteMany(ctx, filter)
	return err
}

// EnsureIndexes creates necessary indexes on the comments collection.
func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
