package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todoapi/todoapi/internal/model"
)

type tokenDoc struct {
	Access string `bson:"access"`
	Token  string `bson:"token"`
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Tokens   []tokenDoc         `bson:"tokens"`
}

func (d *userDoc) toModel() *model.User {
	u := &model.User{
		ID:       d.ID.Hex(),
		Email:    d.Email,
		Password: d.Password,
		Tokens:   make([]model.Token, len(d.Tokens)),
	}
	for i, t := range d.Tokens {
		u.Tokens[i] = model.Token{Access: t.Access, Token: t.Token}
	}
	u.MarkPersisted()
	return u
}

// CreateUser inserts a new user document.
func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	oid := primitive.NewObjectID()
	if user.ID != "" {
		var ok bool
		if oid, ok = objectID(user.ID); !ok {
			return fmt.Errorf("invalid user ID %q", user.ID)
		}
	}

	doc := userDoc{
		ID:       oid,
		Email:    user.Email,
		Password: user.Password,
		Tokens:   make([]tokenDoc, len(user.Tokens)),
	}
	for i, t := range user.Tokens {
		doc.Tokens[i] = tokenDoc{Access: t.Access, Token: t.Token}
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = oid.Hex()
	user.MarkPersisted()
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

// GetUserByEmail retrieves a user by their email address.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// GetUserByToken retrieves a user that holds the exact token and access pair.
func (s *MongoStore) GetUserByToken(ctx context.Context, id, token, access string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{
		"_id": oid,
		"tokens": bson.M{"$elemMatch": bson.M{
			"token":  token,
			"access": access,
		}},
	})
}

// AddToken appends a token to the user's token list.
func (s *MongoStore) AddToken(ctx context.Context, userID string, token model.Token) error {
	oid, ok := objectID(userID)
	if !ok {
		return ErrUserNotFound
	}

	res, err := s.users.UpdateByID(ctx, oid, bson.M{
		"$push": bson.M{"tokens": tokenDoc{Access: token.Access, Token: token.Token}},
	})
	if err != nil {
		return fmt.Errorf("failed to add token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RemoveToken pulls every entry with the given token value.
func (s *MongoStore) RemoveToken(ctx context.Context, userID, token string) error {
	oid, ok := objectID(userID)
	if !ok {
		return nil
	}

	_, err := s.users.UpdateByID(ctx, oid, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
	})
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toModel(), nil
}
