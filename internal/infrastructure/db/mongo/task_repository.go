package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type attachmentDoc struct {
	ID           string    `bson:"_id"`
	FileName     string    `bson:"filename"`
	OriginalName string    `bson:"original_name"`
	MimeType     string    `bson:"mime_type"`
	Size         int64     `bson:"size"`
	UploadedBy   string    `bson:"uploaded_by"`
	UploadedAt   time.Time `bson:"uploaded_at"`
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID   string             `bson:"project_id"`
	Title       string             `bson:"title"`
	Desc        string             `bson:"desc"`
	AssigneeID  string             `bson:"assignee_id,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	Attachments []attachmentDoc    `bson:"attachments"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func attachmentToDoc(a domain.Attachment) attachmentDoc {
	return attachmentDoc{
		ID:           a.ID,
		FileName:     a.FileName,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		Size:         a.Size,
		UploadedBy:   a.UploadedBy,
		UploadedAt:   a.UploadedAt,
	}
}

func (d taskDoc) toDomain() *domain.Task {
	atts := make([]domain.Attachment, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		atts = append(atts, domain.Attachment{
			ID:           a.ID,
			FileName:     a.FileName,
			OriginalName: a.OriginalName,
			MimeType:     a.MimeType,
			Size:         a.Size,
			UploadedBy:   a.UploadedBy,
			UploadedAt:   a.UploadedAt,
		})
	}
	return &domain.Task{
		ID:          d.ID.Hex(),
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Desc:        d.Desc,
		AssigneeID:  d.AssigneeID,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		Attachments: atts,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]attachmentDoc, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		docs = append(docs, attachmentToDoc(a))
	}

	doc := taskDoc{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Desc:        t.Desc,
		AssigneeID:  t.AssigneeID,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Attachments: docs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	created := *t
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	parsed, err := oid(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d taskDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": parsed}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, f ports.TaskListFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if len(f.ProjectIDs) == 1 {
		filter["project_id"] = f.ProjectIDs[0]
	} else if len(f.ProjectIDs) > 1 {
		filter["project_id"] = bson.M{"$in": f.ProjectIDs}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Assignee == "unassigned" {
		filter["assignee_id"] = bson.M{"$in": bson.A{"", nil}}
	} else if f.Assignee != "" {
		filter["assignee_id"] = f.Assignee
	}
	if !f.DueFrom.IsZero() || !f.DueTo.IsZero() {
		due := bson.M{}
		if !f.DueFrom.IsZero() {
			due["$gte"] = f.DueFrom
		}
		if !f.DueTo.IsZero() {
			due["$lte"] = f.DueTo
		}
		filter["due_date"] = due
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			bson.M{"desc": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := -1
	if f.SortOrder == "asc" {
		order = 1
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortBy, Value: order}}))
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	parsed, err := oid(t.ID)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": parsed}, bson.M{"$set": bson.M{
		"title":       t.Title,
		"desc":        t.Desc,
		"assignee_id": t.AssigneeID,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"due_date":    t.DueDate,
		"updated_at":  t.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	parsed, err := oid(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": parsed})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"project_id": projectID})
	return err
}

func (r *TaskRepository) AddAttachment(ctx context.Context, taskID string, att domain.Attachment) error {
	parsed, err := oid(taskID)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": parsed},
		bson.M{"$push": bson.M{"attachments": attachmentToDoc(att)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) RemoveAttachment(ctx context.Context, taskID, attachmentID string) error {
	parsed, err := oid(taskID)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": parsed},
		bson.M{"$pull": bson.M{"attachments": bson.M{"_id": attachmentID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	if res.ModifiedCount == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func (r *TaskRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{
		"due_date": bson.M{"$gte": from, "$lte": to},
		"status":   bson.M{"$ne": string(domain.StatusDone)},
	})
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (r *TaskRepository) CountByStatus(ctx context.Context, projectIDs []string) ([]ports.TaskStatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{}
	if len(projectIDs) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"project_id": bson.M{"$in": projectIDs}}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   bson.M{"project_id": "$project_id", "status": "$status"},
		"count": bson.M{"$sum": 1},
	}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []ports.TaskStatusCount{}
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				ProjectID string `bson:"project_id"`
				Status    string `bson:"status"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, ports.TaskStatusCount{
			ProjectID: row.ID.ProjectID,
			Status:    domain.TaskStatus(row.ID.Status),
			Count:     row.Count,
		})
	}
	return rows, cur.Err()
}

func (r *TaskRepository) CountByPriority(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Priority string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Priority] = row.Count
	}
	return out, cur.Err()
}

func (r *TaskRepository) CountOverdue(ctx context.Context, projectIDs []string, now time.Time) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{
		"due_date": bson.M{"$ne": nil, "$lt": now},
		"status":   bson.M{"$ne": string(domain.StatusDone)},
	}
	if len(projectIDs) > 0 {
		match["project_id"] = bson.M{"$in": projectIDs}
	}

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$project_id", "overdue": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			ProjectID string `bson:"_id"`
			Overdue   int64  `bson:"overdue"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ProjectID] = row.Overdue
	}
	return out, cur.Err()
}

func (r *TaskRepository) CountCreatedPerMonth(ctx context.Context, since time.Time) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$project", Value: bson.M{
			"month": bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$month", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Month string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Month] = row.Count
	}
	return out, cur.Err()
}

// EnsureIndexes creates necessary indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignee_id", Value: 1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeTasks(ctx context.Context, cur *mongo.Cursor) ([]*domain.Task, error) {
	defer cur.Close(ctx)

	tasks := []*domain.Task{}
	for cur.Next(ctx) {
		var d taskDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		tasks = append(tasks, d.toDomain())
	}
	return tasks, cur.Err()
}
