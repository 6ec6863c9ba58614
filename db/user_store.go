package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oybek/wellness/auth"
	"github.com/oybek/wellness/entity"
)

// UserStore is the MongoDB implementation of auth.UserStore.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(client *mongo.Client, dbName string) *UserStore {
	return &UserStore{coll: database(client, dbName).Collection(UsersCollection)}
}

func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *UserStore) CreateUser(ctx context.Context, u entity.User) error {
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrEmailTaken
	}
	return err
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (entity.User, error) {
	var u entity.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.User{}, auth.ErrUserNotFound
	}
	return u, err
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (entity.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) FindUserByID(ctx context.Context, id string) (entity.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}
