package mongodb

import (
	"context"
	"fmt"
	"log"

	"platform/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	postsCollection   = "posts"
	momentsCollection = "moments"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// Connect открывает соединение с MongoDB из конфигурации
func Connect(ctx context.Context) error {
	if client != nil {
		log.Println("MongoDB client is already initialized")
		return nil
	}
	if config.AppConfig == nil {
		return fmt.Errorf("AppConfig is not loaded")
	}

	conf := config.AppConfig.Mongo
	if conf.URI == "" {
		return fmt.Errorf("mongo configuration is missing")
	}

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := conf.Database
	if dbName == "" {
		dbName = "platform"
	}
	client = c
	database = c.Database(dbName)
	return nil
}

// EnsureIndexes создает индексы коллекций: уникальный slug, текстовые
// индексы для поиска и составные индексы лент
func EnsureIndexes(ctx context.Context) error {
	posts := database.Collection(postsCollection)
	_, err := posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
		},
		{
			Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}

	moments := database.Collection(momentsCollection)
	_, err = moments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "content", Value: "text"}},
		},
		{
			Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "likeCount", Value: -1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create moment indexes: %w", err)
	}
	return nil
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	database = nil
	return err
}
