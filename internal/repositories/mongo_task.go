package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-tracker/internal/models"
)

// コレクション名
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// MongoTaskRepository は tasks コレクションを操作します。
type MongoTaskRepository struct {
	tasks *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{tasks: db.Collection(TasksCollection)}
}

func (r *MongoTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	// ObjectID はプロセス内で単調増加するので、同じミリ秒の作成順も _id で並べられる
	t.ID = primitive.NewObjectID().Hex()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := r.tasks.InsertOne(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (r *MongoTaskRepository) FindByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.tasks.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) FindByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	var task models.Task
	err := r.tasks.FindOne(ctx, ownedBy(id, userID)).Decode(&task)
	if err != nil {
		return nil, mapTaskErr(err, "failed to find task")
	}
	return &task, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, id, userID string, c models.TaskChanges) (*models.Task, error) {
	if c.Empty() {
		return r.FindByIDAndOwner(ctx, id, userID)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if c.Title != nil {
		set["title"] = *c.Title
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.DueDate != nil && !c.ClearDueDate {
		set["due_date"] = *c.DueDate
	}
	if c.Priority != nil {
		set["priority"] = *c.Priority
	}
	if c.Completed != nil {
		set["completed"] = *c.Completed
	}
	update := bson.M{"$set": set}
	if c.ClearDueDate {
		update["$unset"] = bson.M{"due_date": ""}
	}

	return r.findOneAndUpdate(ctx, ownedBy(id, userID), update)
}

// Toggle は集計パイプラインで completed を反転し、読み書きを一回で済ませます。
func (r *MongoTaskRepository) Toggle(ctx context.Context, id, userID string) (*models.Task, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: bson.A{"$completed"}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}
	return r.findOneAndUpdate(ctx, ownedBy(id, userID), pipeline)
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.tasks.DeleteOne(ctx, ownedBy(id, userID))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	if err := r.tasks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		return nil, mapTaskErr(err, "failed to update task")
	}
	return &task, nil
}

func ownedBy(id, userID string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func mapTaskErr(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// EnsureMongoIndexes はユーザー名の一意制約と所有者検索用のインデックスを作成します。
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	_, err = db.Collection(TasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks index: %w", err)
	}
	return nil
}
