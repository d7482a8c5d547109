package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type MongoDBConfig struct {
	URI      string
	Database string
}

func NewMongoDBConfig() (*MongoDBConfig, error) {
	uri := getEnv("MONGO_URI", "")
	if uri == "" {
		return nil, errors.New("MONGO_URI not set")
	}
	return &MongoDBConfig{URI: uri, Database: getEnv("MONGO_DATABASE", "ghx_portal")}, nil
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDBClient connects once per process; the driver owns the connection pool.
func NewMongoDBClient(lc fx.Lifecycle, config *MongoDBConfig, logger *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(config.URI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", config.Database))

	db := client.Database(config.Database)
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			return ensureIndexes(startCtx, db, logger)
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	// One active (pending or confirmed) booking per mentor slot.
	activeSlotIndex := options.Index().
		SetName("uniq_active_mentor_slot").
		SetUnique(true).
		SetPartialFilterExpression(bson.M{"status": bson.M{"$in": bson.A{"pending", "confirmed"}}})

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		"programs": {
			{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "application_deadline", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"bookings": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time_slot", Value: 1}}, Options: activeSlotIndex},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	logger.Debug("mongo indexes ensured")
	return nil
}

// Ping checks the connection within a short deadline.
func (c *MongoDBClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.Client.Ping(ctx, nil)
}

// DataSize returns the storage size in bytes reported by dbStats.
func (c *MongoDBClient) DataSize(ctx context.Context) (int64, error) {
	var stats struct {
		DataSize float64 `bson:"dataSize"`
	}
	if err := c.Database.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats); err != nil {
		return 0, err
	}
	return int64(stats.DataSize), nil
}
