package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todoapi/todoapi/internal/model"
)

type todoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Text        string             `bson:"text"`
	Completed   bool               `bson:"completed"`
	CompletedAt *int64             `bson:"completedAt"`
	Creator     primitive.ObjectID `bson:"_creator"`
}

func (d *todoDoc) toModel() *model.Todo {
	return &model.Todo{
		ID:          d.ID.Hex(),
		Text:        d.Text,
		Completed:   d.Completed,
		CompletedAt: d.CompletedAt,
		CreatorID:   d.Creator.Hex(),
	}
}

// CreateTodo inserts a new todo document.
func (s *MongoStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	creator, ok := objectID(todo.CreatorID)
	if !ok {
		return fmt.Errorf("invalid creator ID %q", todo.CreatorID)
	}

	doc := todoDoc{
		ID:          primitive.NewObjectID(),
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		Creator:     creator,
	}

	if _, err := s.todos.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	todo.ID = doc.ID.Hex()
	return nil
}

// ListTodos returns every todo owned by creatorID in creation order.
func (s *MongoStore) ListTodos(ctx context.Context, creatorID string) ([]*model.Todo, error) {
	todos := make([]*model.Todo, 0)

	creator, ok := objectID(creatorID)
	if !ok {
		return todos, nil
	}

	cur, err := s.todos.Find(ctx,
		bson.M{"_creator": creator},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc todoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode todo: %w", err)
		}
		todos = append(todos, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// GetTodo retrieves a todo owned by creatorID.
func (s *MongoStore) GetTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, ErrTodoNotFound
	}
	return decodeTodo(s.todos.FindOne(ctx, filter))
}

// UpdateTodo applies upd to a todo owned by creatorID and returns the new state.
func (s *MongoStore) UpdateTodo(ctx context.Context, id, creatorID string, upd model.TodoUpdate) (*model.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, ErrTodoNotFound
	}

	set := bson.M{
		"completed":   upd.Completed,
		"completedAt": upd.CompletedAt,
	}
	if upd.Text != nil {
		set["text"] = *upd.Text
	}

	res := s.todos.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeTodo(res)
}

// DeleteTodo removes a todo owned by creatorID and returns it.
func (s *MongoStore) DeleteTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, ErrTodoNotFound
	}
	return decodeTodo(s.todos.FindOneAndDelete(ctx, filter))
}

func ownedFilter(id, creatorID string) (bson.M, bool) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false
	}
	creator, ok := objectID(creatorID)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": oid, "_creator": creator}, true
}

func decodeTodo(res *mongo.SingleResult) (*model.Todo, error) {
	var doc todoDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to decode todo: %w", err)
	}
	return doc.toModel(), nil
}
