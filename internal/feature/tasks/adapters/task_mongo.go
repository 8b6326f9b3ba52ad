package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// TasksCollection はタスクドキュメントのコレクション名です。
const TasksCollection = "tasks"

type taskDocument struct {
	ID          string    `bson:"_id"`
	Description string    `bson:"description"`
	Completed   bool      `bson:"completed"`
	Owner       string    `bson:"owner"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d *taskDocument) toEntity() *entity.Task {
	return &entity.Task{
		ID:          d.ID,
		Description: d.Description,
		Completed:   d.Completed,
		Owner:       d.Owner,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// taskMongo はTaskRepositoryのMongoDB実装です。
type taskMongo struct {
	coll *mongo.Collection
}

var _ usecase.TaskRepository = (*taskMongo)(nil)

// NewTaskMongo はtaskMongoの新しいインスタンスを生成します。
func NewTaskMongo(db *mongo.Database) *taskMongo {
	return &taskMongo{coll: db.Collection(TasksCollection)}
}

// EnsureIndexes は所有者ごとの一覧取得用インデックスを作成します。
func (r *taskMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("owner_createdAt"),
	})
	return err
}

// Create はタスクドキュメントを追加します。
func (r *taskMongo) Create(ctx context.Context, t *entity.Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	_, err := r.coll.InsertOne(ctx, taskDocument{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	})
	return err
}

// listFilter は所有者と完了状態の検索条件を組み立てます。
func listFilter(ownerID string, completed *bool) bson.M {
	filter := bson.M{"owner": ownerID}
	if completed != nil {
		filter["completed"] = *completed
	}
	return filter
}

// listSort は並び順を組み立てます。同じ値のドキュメントは_idで順序を固定します。
func listSort(field usecase.SortField, desc bool) bson.D {
	order := 1
	if desc {
		order = -1
	}
	if field == "" {
		field = usecase.SortByCreatedAt
	}
	return bson.D{{Key: string(field), Value: order}, {Key: "_id", Value: 1}}
}

// List は所有者のタスクを絞り込み・並び替え・ページングして返します。
func (r *taskMongo) List(ctx context.Context, ownerID string, opts usecase.ListOptions) ([]*entity.Task, error) {
	findOpts := options.Find().SetSort(listSort(opts.SortBy, opts.Desc))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(int64(opts.Skip))
	}

	cur, err := r.coll.Find(ctx, listFilter(ownerID, opts.Completed), findOpts)
	if err != nil {
		return nil, err
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]*entity.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toEntity())
	}
	return tasks, nil
}

// FindByID はIDと所有者の両方が一致するタスクを返します。
func (r *taskMongo) FindByID(ctx context.Context, id, ownerID string) (*entity.Task, error) {
	var doc taskDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// taskSetDocument はTaskChangesを$set用のドキュメントに変換します。
func taskSetDocument(changes usecase.TaskChanges, now time.Time) bson.M {
	set := bson.M{}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Completed != nil {
		set["completed"] = *changes.Completed
	}
	if len(set) == 0 {
		return set
	}
	set["updatedAt"] = now
	return set
}

// Update は変更を1回の$setで適用します。
func (r *taskMongo) Update(ctx context.Context, id, ownerID string, changes usecase.TaskChanges) error {
	set := taskSetDocument(changes, time.Now().UTC())
	if len(set) == 0 {
		return nil
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "owner": ownerID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// Delete は所有者のタスクを削除します。
func (r *taskMongo) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// DeleteByOwner は所有者のタスクをすべて削除します。
func (r *taskMongo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
