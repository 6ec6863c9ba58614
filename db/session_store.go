package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/lifecycle"
)

// SessionStore is the MongoDB implementation of lifecycle.Store.
type SessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(client *mongo.Client, dbName string) *SessionStore {
	return &SessionStore{coll: database(client, dbName).Collection(SessionsCollection)}
}

func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	return err
}

func filterDoc(f lifecycle.Filter) bson.D {
	doc := bson.D{}
	if f.ID != "" {
		doc = append(doc, bson.E{Key: "_id", Value: f.ID})
	}
	if f.OwnerID != "" {
		doc = append(doc, bson.E{Key: "user_id", Value: f.OwnerID})
	}
	if f.Status != "" {
		doc = append(doc, bson.E{Key: "status", Value: f.Status})
	}
	return doc
}

func updateDoc(p lifecycle.Patch) bson.D {
	set := bson.D{
		{Key: "title", Value: p.Title},
		{Key: "tags", Value: append([]string{}, p.Tags...)},
		{Key: "json_file_url", Value: p.ContentURL},
		{Key: "updated_at", Value: p.UpdatedAt},
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *p.Status})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// checkStatus rejects documents whose status was written outside this service.
func checkStatus(sess entity.Session) error {
	if !sess.Status.Valid() {
		return fmt.Errorf("session %s: unknown status %q", sess.ID, sess.Status)
	}
	return nil
}

func (s *SessionStore) Create(ctx context.Context, sess entity.Session) error {
	if sess.Tags == nil {
		sess.Tags = []string{}
	}
	_, err := s.coll.InsertOne(ctx, sess)
	return err
}

func (s *SessionStore) Find(ctx context.Context, f lifecycle.Filter, sort lifecycle.Sort) ([]entity.Session, error) {
	dir := 1
	if sort.Desc {
		dir = -1
	}
	field := string(sort.Field)
	if field == "" {
		field = string(lifecycle.SortByCreatedAt)
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}})

	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []entity.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if err = checkStatus(sess); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SessionStore) FindOne(ctx context.Context, f lifecycle.Filter) (entity.Session, error) {
	var sess entity.Session
	err := s.coll.FindOne(ctx, filterDoc(f)).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.Session{}, lifecycle.ErrNoDocument
	}
	if err != nil {
		return entity.Session{}, err
	}
	if err = checkStatus(sess); err != nil {
		return entity.Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) UpdateOne(ctx context.Context, f lifecycle.Filter, p lifecycle.Patch) (entity.Session, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sess entity.Session
	err := s.coll.FindOneAndUpdate(ctx, filterDoc(f), updateDoc(p), opts).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.Session{}, lifecycle.ErrNoDocument
	}
	if err != nil {
		return entity.Session{}, err
	}
	if err = checkStatus(sess); err != nil {
		return entity.Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) DeleteOne(ctx context.Context, f lifecycle.Filter) error {
	res, err := s.coll.DeleteOne(ctx, filterDoc(f))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return lifecycle.ErrNoDocument
	}
	return nil
}
