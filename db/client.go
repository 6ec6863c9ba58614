package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Url         string
	ConnTimeout time.Duration
}

const (
	DefaultDatabase    = "wellness"
	SessionsCollection = "sessions"
	UsersCollection    = "users"
)

// Create connects to MongoDB and verifies the primary is reachable.
func Create(ctx context.Context, cfg Config) (*mongo.Client, error) {
	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Url))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err = mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return mongoClient, nil
}

func database(client *mongo.Client, name string) *mongo.Database {
	if name == "" {
		name = DefaultDatabase
	}
	return client.Database(name)
}
